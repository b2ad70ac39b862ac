package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk.io/eventdesk/internal/api/handlers"
	"eventdesk.io/eventdesk/internal/config"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

func testRouter() *gin.Engine {
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	stores := memory.NewStores()
	server := handlers.NewServer(handlers.ServerDeps{})
	return newRouter(cfg, server, []byte("0123456789abcdef0123456789abcdef"), stores.Users)
}

func TestRouterRegistersSurface(t *testing.T) {
	router := testRouter()

	want := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/health"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/public/events/upcoming"},
		{http.MethodGet, "/api/v1/public/events/slug/:slug"},
		{http.MethodPost, "/api/v1/public/events/:id/register"},
		{http.MethodGet, "/api/v1/events"},
		{http.MethodGet, "/api/v1/events/:id/occurrences"},
		{http.MethodPut, "/api/v1/events/:id/status"},
		{http.MethodPut, "/api/v1/events/:id/restore"},
		{http.MethodPost, "/api/v1/events/:id/duplicate"},
		{http.MethodDelete, "/api/v1/events/:id/permanent"},
		{http.MethodGet, "/api/v1/registrations/export"},
		{http.MethodPut, "/api/v1/registrations/bulk-status"},
		{http.MethodGet, "/api/v1/registrations/event/:eventId"},
		{http.MethodDelete, "/api/v1/registrations/:id/permanent"},
		{http.MethodPost, "/api/v1/users"},
		{http.MethodGet, "/api/v1/activity-logs/stats"},
	}

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, w := range want {
		assert.True(t, registered[w.method+" "+w.path], "missing route %s %s", w.method, w.path)
	}
}

func TestRouterHealthAndAuthGate(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS grant.
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterEmitsRequestID(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
