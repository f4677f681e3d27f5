package ports

import (
	"context"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// Profile is a user view joined with the effective roles computed from
// the assignment ledger. It never contains the password hash.
type Profile struct {
	User  *domain.User  `json:"user"`
	Roles []domain.Role `json:"roles"`
}

// AuthService covers the credential lifecycle: registration, login,
// token refresh, logout, and the authenticated self-service flows.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns the issued token pair and a safe user summary. Both
	// an unknown username and a wrong password fail with
	// domain.ErrInvalidCredentials; a verified but deactivated account
	// fails with domain.ErrAccountDisabled.
	Login(ctx context.Context, username, password string) (TokenPair, *domain.User, error)
	// Refresh exchanges a valid refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout is idempotent. When server-side revocation is enabled the
	// presented refresh token is denylisted for its remaining lifetime;
	// otherwise logout is a client-side discard and a no-op here.
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword, newPasswordConfirm string) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*Profile, error)
}
