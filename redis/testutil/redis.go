package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/redis"
)

// NewClient starts miniredis and returns a client connected to it. Both are
// closed when the test ends. The server is returned so tests can
// FastForward time or inject failures with SetError.
func NewClient(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mini
}
