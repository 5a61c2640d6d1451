// Command catalog-service serves the product catalog. It trusts session
// tokens minted by auth-service, so both must share auth.jwt.secret and the
// Redis revocation store.
//
// Usage:
//
//	catalog-service [-config path] [migrate]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/storefront/bootstrap"
	"github.com/kbukum/storefront/config"
	"github.com/kbukum/storefront/internal/catalog"
	"github.com/kbukum/storefront/internal/platform"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/storage"
	_ "github.com/kbukum/storefront/storage/local"
	_ "github.com/kbukum/storefront/storage/s3"
)

const serviceName = "catalog-service"

// Config is the catalog service configuration.
type Config struct {
	platform.Config `yaml:",inline" mapstructure:",squash"`

	Storage storage.Config `yaml:"storage" mapstructure:"storage"`
	Images  ImagesConfig   `yaml:"images" mapstructure:"images"`
}

// ImagesConfig shapes product image storage.
type ImagesConfig struct {
	// Prefix groups image objects (default: products).
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// ThumbnailQuery is appended to image URLs to form thumbnails.
	ThumbnailQuery string `yaml:"thumbnail_query" mapstructure:"thumbnail_query"`

	// ServeRoute exposes local storage over HTTP (default: /uploads).
	// Ignored for other providers.
	ServeRoute string `yaml:"serve_route" mapstructure:"serve_route"`
}

// ApplyDefaults fills the shared block, storage and images.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.Config.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Images.Prefix == "" {
		c.Images.Prefix = "products"
	}
	if c.Images.ServeRoute == "" {
		c.Images.ServeRoute = "/uploads"
	}
}

// Validate checks the shared block and requires storage.
func (c *Config) Validate() error {
	errs := []error{c.Config.Validate()}
	if !c.Storage.Enabled {
		errs = append(errs, errors.New("storage: must be enabled to accept product images"))
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
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
	rt, err := platform.Register(app, &cfg.Config, catalog.Models()...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if flag.Arg(0) == "migrate" {
		return app.RunTask(ctx, func(context.Context) error {
			return rt.DB.DB().AutoMigrate(catalog.Models()...)
		})
	}

	store := storage.NewComponent(cfg.Storage, app.Logger)
	if err := app.RegisterComponent(store); err != nil {
		return err
	}

	app.OnConfigure(func(_ context.Context, app *bootstrap.App[*Config]) error {
		_, _, sessions, err := rt.Sessions(cfg.Auth, app.Logger)
		if err != nil {
			return err
		}
		retry := cfg.Storage.Retry
		retry.OnRetry = func(attempt int, err error, wait time.Duration) {
			app.Logger.Warn("Retrying image upload", map[string]interface{}{
				"attempt":         attempt,
				"wait":            wait.String(),
				logger.FieldError: err.Error(),
			})
		}
		assets := storage.NewAssets(store.Storage(), storage.AssetsConfig{
			Prefix:         cfg.Images.Prefix,
			MaxSize:        cfg.Storage.MaxFileSize,
			ThumbnailQuery: cfg.Images.ThumbnailQuery,
			Retry:          retry,
		})
		svc := catalog.NewService(catalog.NewGormStore(rt.DB.DB()), assets, rt.Metrics, app.Logger)

		srv, err := platform.NewServer(app, &cfg.Config, rt)
		if err != nil {
			return err
		}
		if cfg.Storage.Provider == storage.ProviderLocal {
			srv.GinEngine().Static(cfg.Images.ServeRoute, cfg.Storage.BasePath)
		}
		catalog.NewHandler(svc, sessions, cfg.Storage.MaxFileSize).Mount(srv.GinEngine())
		return nil
	})
	return app.Run(ctx)
}
