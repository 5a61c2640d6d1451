package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/observability"
)

// Metrics records request count, latency and in-flight requests, labeled by
// the matched route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		m.HTTPRequestsActive.Inc()
		start := time.Now()
		c.Next()
		m.HTTPRequestsActive.Dec()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
