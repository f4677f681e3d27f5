package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sentra-id/identity-api/internal/core/ports"
)

// RevocationStore is the Redis-backed refresh-token denylist. Entries
// expire together with the token they revoke, so the set never needs
// separate cleanup. Key format: revoked:<jti>
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke denylists the token id for ttl (the token's remaining lifetime).
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been denylisted.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(tokenID string) string {
	return "revoked:" + tokenID
}

var _ ports.TokenRevoker = (*RevocationStore)(nil)
