// Package middleware provides the HTTP middleware chain for the events
// console: request tracing, JWT authentication, principal loading and
// centralized error handling.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
)

// ErrorHandler captures errors added via c.Error() and renders a consistent
// JSON response, keeping handlers free of status-mapping boilerplate.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			logger.Warn("Request error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.Error(appErr.Err),
			)
			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			}
			if len(appErr.FieldErrors) > 0 {
				body["errors"] = appErr.FieldErrors
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "An internal error occurred",
		})
	}
}
