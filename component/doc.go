// Package component defines the lifecycle contract for infrastructure the
// services depend on (database, redis, object storage, HTTP server) and a
// Registry that starts them in order and stops them in reverse.
package component
