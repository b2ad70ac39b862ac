package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/repository/memory"
)

func principalRouter(users *memory.UserStore, userID string, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{
		func(c *gin.Context) {
			if userID != "" {
				c.Set(ctxKeyUserID, userID)
			}
		},
		LoadPrincipal(users),
	}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": p.Email})
	})
	r.GET("/me", handlers...)
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	return w
}

func TestLoadPrincipal(t *testing.T) {
	users := memory.NewUserStore()
	require.NoError(t, users.Insert(context.Background(), &domain.User{
		ID: "u-1", Email: "active@example.org", Role: domain.RoleEventAdmin, IsActive: true,
	}))
	require.NoError(t, users.Insert(context.Background(), &domain.User{
		ID: "u-2", Email: "inactive@example.org", Role: domain.RoleEventAdmin, IsActive: false,
	}))

	t.Run("active user loads", func(t *testing.T) {
		w := serve(principalRouter(users, "u-1"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "active@example.org")
	})

	t.Run("missing identity rejected", func(t *testing.T) {
		w := serve(principalRouter(users, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		w := serve(principalRouter(users, "ghost"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated user rejected", func(t *testing.T) {
		w := serve(principalRouter(users, "u-2"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "deactivated")
	})
}

func TestRequireSuperAdmin(t *testing.T) {
	users := memory.NewUserStore()
	require.NoError(t, users.Insert(context.Background(), &domain.User{
		ID: "su", Email: "root@example.org", Role: domain.RoleSuperAdmin, IsActive: true,
	}))
	require.NoError(t, users.Insert(context.Background(), &domain.User{
		ID: "ea", Email: "scoped@example.org", Role: domain.RoleEventAdmin, IsActive: true,
	}))

	w := serve(principalRouter(users, "su", RequireSuperAdmin()))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(principalRouter(users, "ea", RequireSuperAdmin()))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}
