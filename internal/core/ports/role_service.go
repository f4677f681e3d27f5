package ports

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// CreateRoleInput carries the fields of a role creation request.
type CreateRoleInput struct {
	Name        string
	Code        string
	Description string
}

// RoleService manages the role catalog. All operations are
// admin-gated at the API surface, including the read side, because
// role management is an administrative function.
type RoleService interface {
	ListRoles(ctx context.Context, activeOnly bool) ([]domain.Role, error)
	CreateRole(ctx context.Context, in CreateRoleInput) (*domain.Role, error)
	GetRole(ctx context.Context, id string) (*domain.Role, error)
	UpdateRole(ctx context.Context, id string, upd RoleUpdate) (*domain.Role, error)
	// DeactivateRole soft-deletes the role. Every assignment referencing
	// it becomes ineffective immediately without touching the ledger.
	DeactivateRole(ctx context.Context, id string) error
}
