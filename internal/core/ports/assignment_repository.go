package ports

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// AssignmentRepository defines persistence for the user-role ledger.
// A unique index on (user_id, role_id) guarantees at most one row per
// pair; Upsert must be a single atomic conditional write so two
// concurrent grants of the same pair cannot duplicate it.
type AssignmentRepository interface {
	// Upsert activates the assignment for (userID, roleID), creating the
	// row if it does not exist and reactivating it otherwise. The bool
	// reports whether a new row was created.
	Upsert(ctx context.Context, userID, roleID string) (*domain.RoleAssignment, bool, error)
	// Deactivate soft-revokes the assignment. Returns
	// domain.ErrAssignmentNotFound when no row exists for the pair.
	Deactivate(ctx context.Context, userID, roleID string) error
	// ListActiveByUser returns the user's active assignments joined with
	// their role definitions, newest-granted first. Inactive roles are
	// included here; effectiveness filtering is EffectiveRoles' job.
	ListActiveByUser(ctx context.Context, userID string) ([]domain.GrantedRole, error)
	// EffectiveRoles returns the roles where both the assignment and the
	// role itself are active.
	EffectiveRoles(ctx context.Context, userID string) ([]domain.Role, error)
}
