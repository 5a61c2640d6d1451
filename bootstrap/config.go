package bootstrap

import (
	"github.com/kbukum/storefront/config"
)

// Config is the constraint for service configuration types. Any struct that
// embeds config.ServiceConfig satisfies it through promoted methods:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Database database.Config `yaml:"database" mapstructure:"database"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
