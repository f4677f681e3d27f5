package service

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// RBACService answers role-membership questions and maintains the
// user-role ledger. All decisions apply the joint-flag invariant: a
// role counts only while both the assignment and the role are active.
type RBACService struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	assignments ports.AssignmentRepository
}

func NewRBACService(users ports.UserRepository, roles ports.RoleRepository, assignments ports.AssignmentRepository) *RBACService {
	return &RBACService{users: users, roles: roles, assignments: assignments}
}

// HasRole reports whether the user holds an effective role with the
// given code. Codes are compared exactly.
func (s *RBACService) HasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	return s.HasAnyRole(ctx, userID, roleCode)
}

// HasAnyRole reports whether the user holds at least one of the given
// role codes. An empty or anonymous user never matches.
func (s *RBACService) HasAnyRole(ctx context.Context, userID string, roleCodes ...string) (bool, error) {
	if userID == "" || len(roleCodes) == 0 {
		return false, nil
	}
	effective, err := s.assignments.EffectiveRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, role := range effective {
		for _, code := range roleCodes {
			if role.Code == code {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListUserRoles returns the user's active assignments with their role
// definitions and assignment metadata.
func (s *RBACService) ListUserRoles(ctx context.Context, userID string) ([]domain.GrantedRole, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.assignments.ListActiveByUser(ctx, userID)
}

// AssignRole grants a role to a user as an idempotent upsert: a
// previously revoked assignment is reactivated in place, keeping its
// row identity. The bool reports whether a new row was created.
func (s *RBACService) AssignRole(ctx context.Context, userID, roleID string) (*domain.RoleAssignment, bool, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, false, err
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, false, err
	}
	// Inactive roles cannot be granted; they are soft-deleted.
	if !role.IsActive {
		return nil, false, domain.ErrRoleNotFound
	}
	return s.assignments.Upsert(ctx, userID, roleID)
}

// RevokeRole soft-revokes an assignment. Revoking a role that was
// never granted fails with domain.ErrAssignmentNotFound.
func (s *RBACService) RevokeRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return err
	}
	return s.assignments.Deactivate(ctx, userID, roleID)
}
