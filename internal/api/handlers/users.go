package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/users"
)

// ListUsers returns every admin account. Super admin only.
func (s *Server) ListUsers(c *gin.Context) {
	list, err := s.users.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []*domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

// GetUser returns one admin account.
func (s *Server) GetUser(c *gin.Context) {
	u, err := s.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// CreateUser provisions an admin account.
func (s *Server) CreateUser(c *gin.Context) {
	var in users.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	u, err := s.users.Create(c.Request.Context(), middleware.GetPrincipal(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    u,
	})
}

// UpdateUser edits an admin account.
func (s *Server) UpdateUser(c *gin.Context) {
	var in users.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	u, err := s.users.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    u,
	})
}

// DeactivateUser marks an account inactive without removing it.
func (s *Server) DeactivateUser(c *gin.Context) {
	if err := s.users.Deactivate(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}

// PermanentDeleteUser hard-removes an account.
func (s *Server) PermanentDeleteUser(c *gin.Context) {
	if err := s.users.PermanentDelete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User permanently deleted"})
}
