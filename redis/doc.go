// Package redis provides a Redis client component with connection pooling,
// lifecycle management and health checks.
//
// TypedStore layers JSON-encoded values with a key prefix on top of the
// client; the token revocation registry is built on it:
//
//	store := redis.NewTypedStore[Entry](client, "revoked")
//	_ = store.Save(ctx, key, &Entry{...}, ttl)
package redis
