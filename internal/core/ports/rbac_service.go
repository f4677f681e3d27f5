package ports

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// RBACService is the authorization decision procedure. A role is
// effective only when both its assignment and the role definition are
// active.
type RBACService interface {
	HasRole(ctx context.Context, userID, roleCode string) (bool, error)
	HasAnyRole(ctx context.Context, userID string, roleCodes ...string) (bool, error)
	ListUserRoles(ctx context.Context, userID string) ([]domain.GrantedRole, error)
	// AssignRole is an idempotent upsert: an existing row (active or
	// revoked) is reactivated rather than duplicated. The bool reports
	// whether a new row was created. Missing users and missing or
	// inactive roles fail with the matching NotFound error.
	AssignRole(ctx context.Context, userID, roleID string) (*domain.RoleAssignment, bool, error)
	// RevokeRole soft-revokes an assignment. It fails with a NotFound
	// error when the user, the role, or the assignment row is absent.
	RevokeRole(ctx context.Context, userID, roleID string) error
}
