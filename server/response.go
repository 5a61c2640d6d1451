package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/validation"
)

var errNoRoute = apperrors.NotFound("route", "")

// RespondWithError writes err as the standard failure envelope and aborts
// the handler chain. Non-AppErrors become Internal. Internal failures are
// logged with their cause; the client only sees the code and a generic
// message.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
		fields := map[string]interface{}{
			logger.FieldPath:   c.Request.URL.Path,
			logger.FieldMethod: c.Request.Method,
			"code":             string(appErr.Code),
		}
		if appErr.Cause != nil {
			fields[logger.FieldError] = appErr.Cause.Error()
		} else {
			fields[logger.FieldError] = err.Error()
		}
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("Request failed", fields)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondSuccess writes {"success": true, "message": message} merged with
// the endpoint-specific keys in body.
func RespondSuccess(c *gin.Context, status int, message string, body gin.H) {
	out := gin.H{"success": true, "message": message}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// RespondOK writes a 200 success envelope.
func RespondOK(c *gin.Context, message string, body gin.H) {
	RespondSuccess(c, http.StatusOK, message, body)
}

// RespondCreated writes a 201 success envelope.
func RespondCreated(c *gin.Context, message string, body gin.H) {
	RespondSuccess(c, http.StatusCreated, message, body)
}

// BindJSON decodes the request body into dst and runs struct validation.
// Malformed JSON and validation failures are both Validation errors.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.Validation("Request body too large")
		case errors.Is(err, io.EOF):
			return apperrors.Validation("Request body is required")
		case errors.As(err, &typeErr):
			return apperrors.InvalidInput(typeErr.Field, "has the wrong type")
		case errors.As(err, &syntaxErr):
			return apperrors.Validation("Request body is not valid JSON")
		default:
			return apperrors.Validation("Invalid request body").WithCause(err)
		}
	}
	return validation.Validate(dst)
}
