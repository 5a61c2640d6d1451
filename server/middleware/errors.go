package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/storefront/errors"
)

// abort ends the Gin chain with err rendered as the standard failure envelope.
func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}

// writeError renders a failure envelope on a plain ResponseWriter, for the
// layers outside Gin.
func writeError(w http.ResponseWriter, status int, message string) {
	code := apperrors.ErrCodeInvalidInput
	if status >= http.StatusInternalServerError {
		code = apperrors.ErrCodeInternal
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apperrors.New(code, message, status).ToResponse())
}
