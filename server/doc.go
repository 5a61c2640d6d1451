// Package server provides the HTTP server shared by the storefront services:
// a Gin engine mounted on a root ServeMux and served over HTTP/1.1 and h2c.
//
// ApplyMiddleware installs the standard stack (server/middleware):
//
//   - CORS and BodySizeLimit around the root handler
//   - Recovery, RequestID, Tracing, Metrics and RequestLogger inside Gin
//
// RegisterDefaultEndpoints adds /health, /liveness, /readiness, /info and
// the Prometheus /metrics endpoint (server/endpoint).
//
// Handlers report failures with RespondWithError, which renders an
// errors.AppError as the standard failure envelope.
package server
