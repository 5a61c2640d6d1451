package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/observability"
)

const tracerName = "github.com/kbukum/storefront/server/middleware"

// Tracing starts a server span per request, continuing any trace context
// the caller propagated. Spans are no-ops until observability.InitTracer
// installs a provider.
func Tracing(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		spanName := c.Request.Method
		if route != "" {
			spanName = c.Request.Method + " " + route
		}
		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
				attribute.String("url.path", c.Request.URL.Path),
				attribute.String("service", serviceName),
				attribute.String(observability.AttrRequestID, logger.RequestIDFromContext(c.Request.Context())),
			),
		)
		defer span.End()

		if id := observability.TraceID(ctx); id != "" {
			ctx = logger.ContextWithTraceID(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
			if len(c.Errors) > 0 {
				span.RecordError(c.Errors.Last().Err)
			}
		}
	}
}
