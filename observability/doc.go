// Package observability wires OpenTelemetry tracing and Prometheus metrics.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg, log)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "account.register")
//	defer span.End()
//
// Metrics:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry(), "storefront_auth")
//	metrics.ObserveRequest("POST", "/login", 200, elapsed)
//	metrics.AuthAttempt("login", false)
package observability
