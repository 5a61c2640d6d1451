package local

import "fmt"

// DefaultBasePath is the default root directory for local storage.
const DefaultBasePath = "./data/uploads"

// Config holds local filesystem storage configuration.
type Config struct {
	// BasePath is the root directory for local storage.
	BasePath string `mapstructure:"base_path"`

	// PublicURL prefixes object paths in URL. Empty yields file:// URLs.
	PublicURL string `mapstructure:"public_url"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the local configuration is valid.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("local: base_path is required")
	}
	return nil
}
