// Package logger provides structured logging for the storefront services
// on top of zerolog.
//
// Output is JSON in deployed environments and a compact colored console
// format locally. Loggers are cheap to derive: use WithComponent for a
// subsystem and WithContext to pick up the request and account ids that
// the HTTP middleware stores on the request context.
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
