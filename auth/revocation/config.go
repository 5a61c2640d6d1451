package revocation

import (
	"errors"
	"time"
)

// Config configures the revocation registry.
type Config struct {
	// KeyPrefix namespaces revocation entries in Redis (default: "revoked").
	KeyPrefix string `mapstructure:"key_prefix"`

	// WriteTimeout bounds a single Revoke call (default: 2s).
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "revoked"
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 2 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.WriteTimeout < 0 {
		return errors.New("revocation: write_timeout must not be negative")
	}
	return nil
}
