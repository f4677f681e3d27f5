package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// RoleService manages the role catalog. Roles are soft-deleted only,
// so the assignment ledger never dangles.
type RoleService struct {
	roles ports.RoleRepository
}

func NewRoleService(roles ports.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

// ListRoles returns roles newest-created first.
func (s *RoleService) ListRoles(ctx context.Context, activeOnly bool) ([]domain.Role, error) {
	return s.roles.List(ctx, activeOnly)
}

// CreateRole adds a role to the catalog. Name and code must be unique;
// codes are exact-match keys and are not normalized.
func (s *RoleService) CreateRole(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error) {
	ve := &domain.ValidationError{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		ve.Add("name", "name is required")
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		ve.Add("code", "code is required")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if _, err := s.roles.FindByCode(ctx, code); err == nil {
		return nil, domain.NewValidationError("code", "role code already exists")
	} else if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:        name,
		Code:        code,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.roles.Create(ctx, role)
	if err != nil {
		return nil, translateRoleConflict(err)
	}
	return created, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

// UpdateRole applies a partial update; the code is immutable because
// authorization checks reference it.
func (s *RoleService) UpdateRole(ctx context.Context, id string, upd ports.RoleUpdate) (*domain.Role, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, domain.NewValidationError("name", "name is required")
		}
		upd.Name = &trimmed
	}
	updated, err := s.roles.Update(ctx, id, upd)
	if err != nil {
		return nil, translateRoleConflict(err)
	}
	return updated, nil
}

// DeactivateRole soft-deletes the role. Assignments referencing it
// stay untouched and become ineffective through the joint-flag check.
func (s *RoleService) DeactivateRole(ctx context.Context, id string) error {
	return s.roles.Deactivate(ctx, id)
}

func translateRoleConflict(err error) error {
	switch {
	case errors.Is(err, domain.ErrRoleNameTaken):
		return domain.NewValidationError("name", "role name already exists")
	case errors.Is(err, domain.ErrRoleCodeTaken):
		return domain.NewValidationError("code", "role code already exists")
	default:
		return err
	}
}
