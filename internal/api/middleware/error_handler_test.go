package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

func errorRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func TestErrorHandlerAppError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	errorRouter(apperrors.NotFound(apperrors.CodeEventNotFound, "Event not found")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":"EVENT_NOT_FOUND","message":"Event not found"}`, w.Body.String())
}

func TestErrorHandlerFieldErrors(t *testing.T) {
	err := apperrors.BadRequest(apperrors.CodeValidationFailed, "Registration data failed validation").
		WithFieldErrors([]apperrors.FieldError{
			{Field: "name", Code: "required", Message: "name is required"},
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	errorRouter(err).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"errors"`)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
}

func TestErrorHandlerUnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	errorRouter(errors.New("driver exploded")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"An internal error occurred"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "driver exploded")
}

func TestErrorHandlerNoError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
