package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "amina@example.org", domain.RoleSuperAdmin)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "Amina@Example.ORG",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expiresAt"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "amina@example.org", user["email"])
	assert.NotContains(t, user, "passwordHash")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "amina@example.org", domain.RoleSuperAdmin)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "amina@example.org",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_FAILED", decodeBody(t, w)["code"])
}

func TestLoginBindFailure(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "amina@example.org"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"VALIDATION_FAILED","message":"Email and password are required"}`, w.Body.String())
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.seedAdmin(t, "bilal@example.org", domain.RoleEventAdmin)

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user, ok := decodeBody(t, w)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, u.ID, user["id"])
	assert.Equal(t, "event_admin", user["role"])
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAdmin(t, "amina@example.org", domain.RoleSuperAdmin)

	w := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, w)["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeBody(t, w)["code"])
}

func TestDeactivatedUserLockedOut(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.seedAdmin(t, "bilal@example.org", domain.RoleEventAdmin)
	super, _ := env.seedAdmin(t, "amina@example.org", domain.RoleSuperAdmin)

	require.NoError(t, env.users.Deactivate(context.Background(), access.FromUser(super), u.ID))

	// The token is still cryptographically valid but the account check
	// on every request rejects it.
	w := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "deactivated")
}
