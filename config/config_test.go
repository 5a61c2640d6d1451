package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults applied, got level %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if !cfg.IsProduction() {
			t.Error("expected IsProduction to be true")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid", ServiceConfig{Name: "svc", Environment: "staging"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Auth          struct {
		JWT struct {
			Secret string        `mapstructure:"secret"`
			TTL    time.Duration `mapstructure:"ttl"`
		} `mapstructure:"jwt"`
	} `mapstructure:"auth"`
	defaulted bool
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.defaulted = true
}

func (c *testConfig) Validate() error { return c.ServiceConfig.Validate() }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: auth-service
environment: staging
auth:
  jwt:
    secret: from-file
    ttl: 168h
`)

	var cfg testConfig
	if err := LoadConfig("auth-service", &cfg, WithConfigFile(path), WithFileSystem(RealFileSystem{})); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "auth-service" {
		t.Errorf("expected name 'auth-service', got %q", cfg.Name)
	}
	if cfg.Auth.JWT.TTL != 7*24*time.Hour {
		t.Errorf("expected ttl 168h, got %v", cfg.Auth.JWT.TTL)
	}
	if !cfg.defaulted {
		t.Error("expected ApplyDefaults to be called")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: auth-service
auth:
  jwt:
    secret: from-file
`)
	t.Setenv("AUTH_JWT_SECRET", "from-env")

	var cfg testConfig
	if err := LoadConfig("auth-service", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Auth.JWT.Secret != "from-env" {
		t.Errorf("expected env override, got %q", cfg.Auth.JWT.Secret)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "environment: staging\n")

	var cfg testConfig
	err := LoadConfig("auth-service", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "missing.env")))
	if err == nil || !strings.Contains(err.Error(), "config.name is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/auth-service/config.yml": true,
		"./.env":                        true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("auth-service", LoaderConfig{})
	if files.ConfigFile != "./cmd/auth-service/config.yml" {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("unexpected env file %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml"})
	if files.ConfigFile != "/etc/svc.yml" {
		t.Errorf("expected explicit config path, got %q", files.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("AUTH_JWT_SECRET")
	for _, want := range []string{"auth_jwt_secret", "auth.jwt.secret", "auth.jwt_secret", "auth_jwt.secret"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if got := envKeyVariants("PORT"); len(got) != 1 || got[0] != "port" {
		t.Errorf("unexpected single-part variants: %v", got)
	}
}
