package ports

import (
	"context"
	"time"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// ProfileUpdate carries the partial fields of a profile update. Nil
// pointers leave the stored value unchanged.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// UserRepository defines persistence for user accounts. Create and
// UpdateProfile must surface unique-index violations as
// domain.ErrUsernameTaken / domain.ErrEmailTaken so concurrent
// registrations race safely.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
