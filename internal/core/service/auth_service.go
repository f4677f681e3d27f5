package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// AuthService implements registration, login, token refresh and the
// authenticated self-service flows.
type AuthService struct {
	users       ports.UserRepository
	assignments ports.AssignmentRepository
	signer      ports.TokenSigner
	revoker     ports.TokenRevoker // nil when server-side revocation is disabled
	policy      *PasswordPolicy
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewAuthService wires an AuthService. revoker may be nil, in which
// case logout is a client-side token discard.
func NewAuthService(
	users ports.UserRepository,
	assignments ports.AssignmentRepository,
	signer ports.TokenSigner,
	revoker ports.TokenRevoker,
	policy *PasswordPolicy,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	if policy == nil {
		policy = NewPasswordPolicy(0)
	}
	return &AuthService{
		users:       users,
		assignments: assignments,
		signer:      signer,
		revoker:     revoker,
		policy:      policy,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

// Register creates a new active user with a bcrypt-hashed password.
// Uniqueness is checked proactively, and the unique indexes catch the
// concurrent-registration race; both paths report the same field-level
// validation error.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	ve := &domain.ValidationError{}

	if in.Password != in.PasswordConfirm {
		ve.Add("password_confirm", "passwords do not match")
	}
	if pwErr := s.policy.Validate("password", in.Password, in.Username, in.Email); pwErr != nil {
		ve.Fields = append(ve.Fields, pwErr.Fields...)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		ve.Add("username", "username already taken")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		ve.Add("email", "email already taken")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if ve.HasErrors() {
		return nil, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, translateConflict(err)
	}
	return created, nil
}

// Login verifies the credentials and issues an access/refresh token
// pair. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (ports.TokenPair, *domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
		}
		return ports.TokenPair{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return ports.TokenPair{}, nil, domain.ErrAccountDisabled
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}

	now := time.Now().UTC()
	// Best effort: a failed timestamp update must not fail the login.
	_ = s.users.UpdateLastLogin(ctx, user.ID, now)
	user.LastLoginAt = &now

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new access token
// without re-authentication.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return s.signer.Sign(claims.UserID, claims.Username, domain.TokenTypeAccess, s.accessTTL)
}

// Logout invalidates the presented refresh token when server-side
// revocation is enabled. It is idempotent: revoking an already-revoked
// or invalid token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.revoker == nil || refreshToken == "" {
		return nil
	}
	claims, err := s.signer.Verify(refreshToken)
	if err != nil || claims.TokenType != domain.TokenTypeRefresh {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.TokenID, ttl)
}

// ChangePassword replaces the caller's password hash after verifying
// the current one. Failures are field-level validation errors because
// the caller is already authenticated.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, newPasswordConfirm string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	ve := &domain.ValidationError{}
	if newPassword != newPasswordConfirm {
		ve.Add("new_password_confirm", "passwords do not match")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		ve.Add("old_password", "current password is incorrect")
	}
	if pwErr := s.policy.Validate("new_password", newPassword, user.Username, user.Email); pwErr != nil {
		ve.Fields = append(ve.Fields, pwErr.Fields...)
	}
	if ve.HasErrors() {
		return ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// GetProfile returns the user joined with their effective roles. The
// role list is computed from the ledger on every call, never stored
// denormalized.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*ports.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.assignments.EffectiveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ports.Profile{User: user, Roles: roles}, nil
}

// UpdateProfile applies a partial update. Email uniqueness is
// re-validated when the email changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ports.ProfileUpdate) (*ports.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *upd.Email); err == nil {
			return nil, domain.NewValidationError("email", "email already taken")
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	updated, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, translateConflict(err)
	}
	roles, err := s.assignments.EffectiveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ports.Profile{User: updated, Roles: roles}, nil
}

func (s *AuthService) issuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.signer.Sign(user.ID, user.Username, domain.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.signer.Sign(user.ID, user.Username, domain.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) verifyRefresh(ctx context.Context, token string) (*ports.TokenClaims, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, domain.ErrInvalidToken
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrInvalidToken
		}
	}
	return claims, nil
}

// translateConflict maps storage-layer uniqueness violations back into
// the field-level validation errors the proactive checks produce.
func translateConflict(err error) error {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return domain.NewValidationError("username", "username already taken")
	case errors.Is(err, domain.ErrEmailTaken):
		return domain.NewValidationError("email", "email already taken")
	default:
		return err
	}
}
