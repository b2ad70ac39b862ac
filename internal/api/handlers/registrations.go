package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/ledger"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// ListRegistrations is the admin ledger listing. An explicit event filter
// outside the caller's scope returns 403; otherwise results are narrowed
// silently.
func (s *Server) ListRegistrations(c *gin.Context) {
	s.listRegistrations(c, c.Query("event"))
}

// ListRegistrationsByEvent lists one event's registrations.
func (s *Server) ListRegistrationsByEvent(c *gin.Context) {
	s.listRegistrations(c, c.Param("eventId"))
}

func (s *Server) listRegistrations(c *gin.Context, eventID string) {
	p := middleware.GetPrincipal(c)
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	regs, total, err := s.ledger.List(c.Request.Context(), p, ledger.ListParams{
		Search:    c.Query("search"),
		Status:    domain.RegistrationStatus(c.Query("status")),
		EventID:   eventID,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}

	pg := paginate(page, limit, total)
	c.JSON(http.StatusOK, gin.H{
		"registrations": regs,
		"currentPage":   pg.CurrentPage,
		"totalPages":    pg.TotalPages,
		"totalCount":    pg.TotalCount,
		"hasNextPage":   pg.HasNextPage,
		"hasPrevPage":   pg.HasPrevPage,
	})
}

// GetRegistration returns one registration.
func (s *Server) GetRegistration(c *gin.Context) {
	reg, err := s.ledger.GetByID(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

// UpdateRegistration edits notes, submitted data and status.
func (s *Server) UpdateRegistration(c *gin.Context) {
	var in ledger.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	reg, err := s.ledger.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration updated successfully",
		"registration": reg,
	})
}

type registrationStatusRequest struct {
	Status domain.RegistrationStatus `json:"status"`
}

// ChangeRegistrationStatus moves one registration to a new status.
func (s *Server) ChangeRegistrationStatus(c *gin.Context) {
	var req registrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	reg, err := s.ledger.ChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration status updated successfully",
		"registration": reg,
	})
}

type bulkStatusRequest struct {
	IDs    []string                  `json:"ids"`
	Status domain.RegistrationStatus `json:"status"`
}

// BulkChangeRegistrationStatus applies one status to many registrations.
func (s *Server) BulkChangeRegistrationStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	modified, err := s.ledger.BulkChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), req.IDs, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Registrations updated successfully",
		"modifiedCount": modified,
	})
}

// DeleteRegistration soft-cancels a registration.
func (s *Server) DeleteRegistration(c *gin.Context) {
	if err := s.ledger.SoftCancel(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled successfully"})
}

// PermanentDeleteRegistration hard-removes a registration.
func (s *Server) PermanentDeleteRegistration(c *gin.Context) {
	if err := s.ledger.PermanentDelete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration permanently deleted"})
}

// RegistrationStats returns the ledger aggregate.
func (s *Server) RegistrationStats(c *gin.Context) {
	stats, err := s.ledger.Stats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportRegistrations streams the filtered ledger as CSV. Any other format
// falls back to the JSON listing.
func (s *Server) ExportRegistrations(c *gin.Context) {
	if c.DefaultQuery("format", "json") != "csv" {
		s.listRegistrations(c, c.Query("eventId"))
		return
	}

	data, filename, err := s.ledger.Export(c.Request.Context(), middleware.GetPrincipal(c), ledger.ExportParams{
		EventID: c.Query("eventId"),
		Status:  domain.RegistrationStatus(c.Query("status")),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
