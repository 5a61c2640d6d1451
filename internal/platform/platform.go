// Package platform holds the wiring shared by the storefront binaries: the
// common configuration block, the database and Redis components, session
// verification and the HTTP server with its default endpoints.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/revocation"
	"github.com/kbukum/storefront/auth/session"
	"github.com/kbukum/storefront/bootstrap"
	"github.com/kbukum/storefront/config"
	"github.com/kbukum/storefront/database"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/observability"
	"github.com/kbukum/storefront/redis"
	"github.com/kbukum/storefront/server"
	"github.com/kbukum/storefront/server/middleware"
)

// ErrRedisRequired is returned when Redis is disabled. Sessions are checked
// against the revocation registry, so a service cannot run without it.
var ErrRedisRequired = errors.New("redis: must be enabled to check revoked sessions")

// Config is the configuration every storefront service shares.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server   server.Config              `yaml:"server" mapstructure:"server"`
	Database database.Config            `yaml:"database" mapstructure:"database"`
	Redis    redis.Config               `yaml:"redis" mapstructure:"redis"`
	Auth     auth.Config                `yaml:"auth" mapstructure:"auth"`
	Tracing  observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills every sub-configuration.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
}

// Validate checks every sub-configuration and reports all failures.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ServiceConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if !c.Redis.Enabled {
		errs = append(errs, ErrRedisRequired)
	} else if err := c.Redis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Runtime is the set of components a service registers before configure.
type Runtime struct {
	DB      *database.Component
	Redis   *redis.Component
	Metrics *observability.Metrics
}

// Register adds the database and Redis components to app. models are
// auto-migrated on start when database.auto_migrate is set.
func Register[C bootstrap.Config](app *bootstrap.App[C], cfg *Config, models ...interface{}) (*Runtime, error) {
	db := database.NewComponent(cfg.Database, app.Logger).WithAutoMigrate(models...)
	if err := app.RegisterComponent(db); err != nil {
		return nil, err
	}
	rc := redis.NewComponent(cfg.Redis, app.Logger)
	if err := app.RegisterComponent(rc); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Runtime{
		DB:      db,
		Redis:   rc,
		Metrics: observability.NewMetrics(reg, metricsNamespace(cfg.Name)),
	}, nil
}

// Sessions builds the token issuer, the revocation registry and the session
// middleware. It needs the Redis component to be started.
func (rt *Runtime) Sessions(cfg auth.Config, log *logger.Logger) (*session.Issuer, auth.RevocationRegistry, *middleware.Session, error) {
	issuer, err := session.NewIssuer(cfg.JWT)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("session issuer: %w", err)
	}
	client := rt.Redis.Client()
	if client == nil {
		return nil, nil, nil, ErrRedisRequired
	}
	var registry auth.RevocationRegistry = revocation.NewRedisRegistry(client, cfg.Revocation)
	return issuer, registry, middleware.NewSession(issuer, registry, cfg.Cookie.Name, log), nil
}

// NewServer creates the HTTP server with the standard middleware and the
// health, info and metrics endpoints, and registers it on app.
func NewServer[C bootstrap.Config](app *bootstrap.App[C], cfg *Config, rt *Runtime) (*server.Server, error) {
	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll, rt.Metrics)
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return srv, nil
}

func metricsNamespace(service string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(service)
}
