package bootstrap

import (
	"time"

	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/observability"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	tracer          *observability.TracerConfig
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithTracing installs an OpenTelemetry tracer provider during startup and
// flushes it on shutdown. A disabled config is a no-op.
func WithTracing(cfg observability.TracerConfig) Option {
	return func(o *appOptions) {
		o.tracer = &cfg
	}
}
