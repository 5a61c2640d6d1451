// Command auth-service serves registration, login, logout, the current
// identity and the address book.
//
// Usage:
//
//	auth-service [-config path] [migrate]
//
// The migrate argument creates or updates the tables and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/storefront/auth/password"
	"github.com/kbukum/storefront/bootstrap"
	"github.com/kbukum/storefront/config"
	"github.com/kbukum/storefront/internal/account"
	"github.com/kbukum/storefront/internal/platform"
)

const serviceName = "auth-service"

// Config is the auth service configuration.
type Config struct {
	platform.Config `yaml:",inline" mapstructure:",squash"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithTracing(cfg.Tracing))
	if err != nil {
		return err
	}
	rt, err := platform.Register(app, &cfg.Config, account.Models()...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if flag.Arg(0) == "migrate" {
		return app.RunTask(ctx, func(context.Context) error {
			return rt.DB.DB().AutoMigrate(account.Models()...)
		})
	}

	app.OnConfigure(func(_ context.Context, app *bootstrap.App[*Config]) error {
		issuer, registry, sessions, err := rt.Sessions(cfg.Auth, app.Logger)
		if err != nil {
			return err
		}
		svc := account.NewService(account.Deps{
			Store:    account.NewGormStore(rt.DB.DB()),
			Hasher:   password.NewHasher(cfg.Auth.Password),
			Policy:   cfg.Auth.Password,
			Tokens:   issuer,
			Registry: registry,
			Metrics:  rt.Metrics,
			Logger:   app.Logger,
		})

		srv, err := platform.NewServer(app, &cfg.Config, rt)
		if err != nil {
			return err
		}
		account.NewHandler(svc, sessions, account.HandlerConfig{
			Cookie:     cfg.Auth.Cookie,
			SessionTTL: issuer.TTL(),
		}).Mount(srv.GinEngine())
		return nil
	})
	return app.Run(ctx)
}

// ApplyDefaults names the service and fills the shared block.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.Config.ApplyDefaults()
}
