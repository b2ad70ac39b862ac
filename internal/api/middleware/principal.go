package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/repository"
)

// LoadPrincipal re-reads the authenticated user on every request so scope
// grants and permission flags are always current, and rejects accounts
// deactivated after the token was issued.
func LoadPrincipal(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ctxKeyUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "missing authenticated identity",
			})
			return
		}

		u, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "unknown user",
			})
			return
		}
		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "account is deactivated",
			})
			return
		}

		c.Set(ctxKeyPrincipal, access.FromUser(u))
		c.Next()
	}
}

// GetPrincipal returns the principal loaded for this request, or nil.
func GetPrincipal(c *gin.Context) *access.Principal {
	if v, ok := c.Get(ctxKeyPrincipal); ok {
		if p, ok := v.(*access.Principal); ok {
			return p
		}
	}
	return nil
}

// RequireSuperAdmin guards routes reserved for the super_admin role.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).IsSuperAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "FORBIDDEN",
				"message": "super admin access required",
			})
			return
		}
		c.Next()
	}
}
