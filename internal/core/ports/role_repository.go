package ports

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// RoleUpdate carries the partial fields of a role update. Nil pointers
// leave the stored value unchanged.
type RoleUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// RoleRepository defines persistence for the role catalog. Create and
// Update must surface unique-index violations as
// domain.ErrRoleNameTaken / domain.ErrRoleCodeTaken. Roles are never
// physically removed; Deactivate flips is_active.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByCode(ctx context.Context, code string) (*domain.Role, error)
	// List returns roles newest-created first, optionally restricted to
	// active ones.
	List(ctx context.Context, activeOnly bool) ([]domain.Role, error)
	Update(ctx context.Context, id string, upd RoleUpdate) (*domain.Role, error)
	Deactivate(ctx context.Context, id string) error
}
