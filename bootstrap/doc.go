// Package bootstrap runs the lifecycle shared by the storefront services.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithTracing(cfg.Tracing))
//	_ = app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // build services and handlers, then register the HTTP server
//	    return a.RegisterComponent(server.NewComponent(srv))
//	})
//	err = app.Run(ctx)
//
// Run starts the registered infrastructure, runs the configure callbacks,
// starts whatever they registered, and blocks until SIGINT or SIGTERM.
// Shutdown stops components in reverse registration order.
package bootstrap
