package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/component"
)

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// overall folds component states into the worst one seen.
func overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func writeStatus(c *gin.Context, code int, service, status string, extra gin.H) {
	body := gin.H{
		"status":    status,
		"service":   service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

// Health reports the overall state with per-component detail. An unhealthy
// database, Redis or storage answers 503; a degraded one still answers 200.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		status := overall(components)
		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeStatus(c, code, service, string(status), gin.H{"components": components})
	}
}

// Liveness answers 200 while the process can serve HTTP at all.
func Liveness(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeStatus(c, http.StatusOK, service, "alive", nil)
	}
}

// Readiness answers 503 while any component is unhealthy, so a load
// balancer stops routing logins to an instance that cannot reach its store.
func Readiness(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil && overall(checker(c.Request.Context())) == component.StatusUnhealthy {
			writeStatus(c, http.StatusServiceUnavailable, service, "not_ready", nil)
			return
		}
		writeStatus(c, http.StatusOK, service, "ready", nil)
	}
}
