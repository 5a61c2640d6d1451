package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/logger"
)

// Recovery recovers from handler panics, logs the stack and answers with
// the standard Internal failure envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]interface{}{
					logger.FieldError:  fmt.Sprintf("%v", rec),
					"stack":            string(debug.Stack()),
					logger.FieldPath:   c.Request.URL.Path,
					logger.FieldMethod: c.Request.Method,
					"client_ip":        c.ClientIP(),
				})
				abort(c, apperrors.Internal(fmt.Errorf("panic: %v", rec)))
			}
		}()
		c.Next()
	}
}
