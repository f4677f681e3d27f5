// Package token implements the signed-credential primitive on top of
// HS256 JWTs. Verification is a pure computation (signature + expiry),
// so it never touches a store.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

const issuer = "identity-api"

// JWTSigner signs and verifies HS256 tokens with a shared secret.
type JWTSigner struct {
	secret []byte
}

func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret)}
}

type jwtClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Sign issues a token of the given type for the user, expiring after
// ttl. Every token carries a unique jti so refresh tokens can be
// denylisted individually.
func (s *JWTSigner) Sign(userID, username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwtClaims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry. Any malformed, tampered or
// expired token yields domain.ErrInvalidToken; callers never see
// library error types.
func (s *JWTSigner) Verify(token string) (*ports.TokenClaims, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}

	return &ports.TokenClaims{
		UserID:    claims.Subject,
		Username:  claims.Username,
		TokenType: claims.TokenType,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func newTokenID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

var _ ports.TokenSigner = (*JWTSigner)(nil)
