package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/logger"
)

const slowRequestThreshold = 500 * time.Millisecond

// RequestLogger logs every request with method, path, status, latency and
// request id. 5xx logs at error, 4xx at warn, the rest at info. Health and
// metrics paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			logger.FieldMethod:   c.Request.Method,
			logger.FieldPath:     c.Request.URL.Path,
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
			"client_ip":          c.ClientIP(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		if latency > slowRequestThreshold {
			fields["slow"] = true
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.Last().Error()
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("Request completed", fields)
		case status >= 400:
			l.Warn("Request completed", fields)
		default:
			l.Info("Request completed", fields)
		}
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/liveness", "/readiness", "/metrics":
		return true
	}
	return false
}
