// Package revocation records session tokens invalidated at logout so they
// are refused until they would have expired anyway.
//
// Tokens are keyed by their SHA-256 digest; the raw token never reaches
// Redis. Each entry carries a TTL equal to the token's remaining lifetime,
// so the registry never grows past the set of live tokens.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/storefront/auth/password"
	"github.com/kbukum/storefront/redis"
)

// Entry is the value stored for a revoked token.
type Entry struct {
	RevokedAt time.Time `json:"revokedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RedisRegistry records revoked tokens in Redis. It satisfies
// auth.RevocationRegistry without importing auth.
type RedisRegistry struct {
	store *redis.TypedStore[Entry]
	cfg   Config
	now   func() time.Time
}

// NewRedisRegistry creates a registry on client.
func NewRedisRegistry(client *redis.Client, cfg Config) *RedisRegistry {
	cfg.ApplyDefaults()
	return &RedisRegistry{
		store: redis.NewTypedStore[Entry](client, cfg.KeyPrefix),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Key returns the digest under which token is recorded.
func Key(token string) string {
	return password.HashSHA256(token)
}

// Revoke marks token as revoked for ttl. A non-positive ttl means the token
// has already expired and nothing is written.
func (r *RedisRegistry) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if r.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.WriteTimeout)
		defer cancel()
	}

	now := r.now()
	entry := &Entry{RevokedAt: now, ExpiresAt: now.Add(ttl)}
	if err := r.store.Save(ctx, Key(token), entry, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token is currently revoked. Store failures are
// returned to the caller rather than treated as "not revoked".
func (r *RedisRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := r.store.Exists(ctx, Key(token))
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return ok, nil
}
