package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/revocation"
	"github.com/kbukum/storefront/redis/testutil"
)

var _ auth.RevocationRegistry = (*revocation.RedisRegistry)(nil)

func TestRedisRegistry_ServesAsAuthRegistry(t *testing.T) {
	client, _ := testutil.NewClient(t)
	var registry auth.RevocationRegistry = revocation.NewRedisRegistry(client, revocation.Config{})
	ctx := context.Background()

	if err := registry.Revoke(ctx, "tok", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err := registry.IsRevoked(ctx, "tok")
	if err != nil || !revoked {
		t.Errorf("IsRevoked = %v, %v; want true", revoked, err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := revocation.Config{}
	cfg.ApplyDefaults()
	if cfg.KeyPrefix != "revoked" || cfg.WriteTimeout != 2*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	cfg.WriteTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative write_timeout accepted")
	}
}
