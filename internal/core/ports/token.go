package ports

import (
	"context"
	"time"
)

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	UserID    string
	Username  string
	TokenType string
	TokenID   string
	ExpiresAt time.Time
}

// TokenPair bundles the credentials issued on login.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// TokenSigner signs and verifies tokens. Verify is a pure computation
// (signature + expiry check) and must not touch any store, so it is
// safe on the per-request hot path. Any malformed, tampered or expired
// token yields domain.ErrInvalidToken.
type TokenSigner interface {
	Sign(userID, username, tokenType string, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}

// TokenRevoker is the optional server-side refresh-token denylist. It
// is consulted only on refresh and logout, never on access-token
// verification.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
