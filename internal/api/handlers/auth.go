package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_FAILED",
			"message": "Email and password are required",
		})
		return
	}

	u, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwtCfg, u)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if s.trail != nil {
		s.trail.Record(c.Request.Context(), access.FromUser(u), audit.Entry{
			Action:       domain.ActionLogin,
			ResourceType: domain.ResourceUser,
			ResourceID:   u.ID,
			ResourceName: u.Name,
			IPAddress:    c.ClientIP(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      u,
	})
}

// Logout records the logout in the audit trail. Tokens are stateless, so
// there is nothing to revoke server-side.
func (s *Server) Logout(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if s.trail != nil && p != nil {
		s.trail.Record(c.Request.Context(), p, audit.Entry{
			Action:       domain.ActionLogout,
			ResourceType: domain.ResourceUser,
			ResourceID:   p.UserID,
			ResourceName: p.Name,
			IPAddress:    c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user's current record.
func (s *Server) Me(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	u, err := s.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
