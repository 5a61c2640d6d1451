package storage

import (
	"errors"
	"fmt"

	"github.com/kbukum/storefront/resilience"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider    = ProviderLocal
	DefaultBasePath    = "./data/uploads"
	DefaultRegion      = "us-east-1"
	DefaultMaxFileSize = int64(5 * 1024 * 1024)
)

// Config holds storage configuration.
type Config struct {
	// Enabled controls whether the storage component is active.
	Enabled bool `mapstructure:"enabled"`

	// Provider selects the storage backend: "local" or "s3".
	Provider string `mapstructure:"provider"`

	// BasePath is the root directory for local storage.
	BasePath string `mapstructure:"base_path"`

	// PublicURL is the base URL objects are served from. For local storage
	// it is usually the service's own /uploads route.
	PublicURL string `mapstructure:"public_url"`

	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	// MaxFileSize is the maximum allowed object size in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size"`

	// Retry governs re-attempts of failed uploads (default: 3 attempts).
	Retry resilience.RetryConfig `mapstructure:"retry"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	c.Retry.ApplyDefaults()
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("region is required"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
