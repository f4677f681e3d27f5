package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

func TestJWTSigner_SignAndVerify(t *testing.T) {
	signer := NewJWTSigner("secret")

	token, err := signer.Sign("user-1", "alice", domain.TokenTypeAccess, 5*time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != domain.TokenTypeAccess {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected a jti")
	}
	if remaining := time.Until(claims.ExpiresAt); remaining <= 0 || remaining > 5*time.Minute {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestJWTSigner_UniqueTokenIDs(t *testing.T) {
	signer := NewJWTSigner("secret")

	a, _ := signer.Sign("user-1", "alice", domain.TokenTypeRefresh, time.Hour)
	b, _ := signer.Sign("user-1", "alice", domain.TokenTypeRefresh, time.Hour)

	ca, err := signer.Verify(a)
	if err != nil {
		t.Fatalf("verify a: %v", err)
	}
	cb, err := signer.Verify(b)
	if err != nil {
		t.Fatalf("verify b: %v", err)
	}
	if ca.TokenID == cb.TokenID {
		t.Fatalf("expected distinct jti values")
	}
}

func TestJWTSigner_Expired(t *testing.T) {
	signer := NewJWTSigner("secret")

	token, err := signer.Sign("user-1", "alice", domain.TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := signer.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTSigner_Tampered(t *testing.T) {
	signer := NewJWTSigner("secret")

	token, err := signer.Sign("user-1", "alice", domain.TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	if _, err := signer.Verify(strings.Join(parts, ".")); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTSigner_WrongSecret(t *testing.T) {
	token, err := NewJWTSigner("secret-a").Sign("user-1", "alice", domain.TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := NewJWTSigner("secret-b").Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTSigner_Garbage(t *testing.T) {
	signer := NewJWTSigner("secret")
	if _, err := signer.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
