package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/catalog"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// ListEvents is the admin catalog listing with search, filters and
// pagination.
func (s *Server) ListEvents(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	var featured *bool
	if raw := c.Query("featured"); raw != "" {
		v := raw == "true"
		featured = &v
	}

	events, total, err := s.catalog.List(c.Request.Context(), p, catalog.ListParams{
		Search:          c.Query("search"),
		Category:        domain.EventCategory(c.Query("category")),
		Status:          domain.EventStatus(c.Query("status")),
		EventType:       domain.EventType(c.Query("eventType")),
		Featured:        featured,
		IncludeArchived: c.Query("includeArchived") == "true",
		SortBy:          c.Query("sortBy"),
		SortOrder:       c.Query("sortOrder"),
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}

	pg := paginate(page, limit, total)
	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"currentPage": pg.CurrentPage,
		"totalPages":  pg.TotalPages,
		"totalCount":  pg.TotalCount,
		"hasNextPage": pg.HasNextPage,
		"hasPrevPage": pg.HasPrevPage,
	})
}

// GetEvent returns one event with a live attendee count.
func (s *Server) GetEvent(c *gin.Context) {
	ev, err := s.catalog.GetByID(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

// EventOccurrences expands a recurring event's schedule into concrete
// dates, up to an optional until date.
func (s *Server) EventOccurrences(c *gin.Context) {
	var until time.Time
	if t := dateQuery(c, "until"); t != nil {
		until = *t
	}
	dates, err := s.catalog.ListOccurrences(c.Request.Context(), middleware.GetPrincipal(c),
		c.Param("id"), until, intQuery(c, "limit", 52))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if dates == nil {
		dates = []time.Time{}
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": dates})
}

// CreateEvent adds a catalog entry.
func (s *Server) CreateEvent(c *gin.Context) {
	var in catalog.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	ev, err := s.catalog.Create(c.Request.Context(), middleware.GetPrincipal(c), in)
	if err != nil {
		if _, ok := apperrors.IsAppError(err); ok {
			_ = c.Error(err)
			return
		}
		// Storage failures echo the underlying message, matching the
		// behavior admin tooling depends on.
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": fmt.Sprintf("Unable to create event. Error: %s", err),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   ev,
	})
}

// UpdateEvent applies a partial update.
func (s *Server) UpdateEvent(c *gin.Context) {
	var in catalog.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	ev, err := s.catalog.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), in)
	if err != nil {
		if _, ok := apperrors.IsAppError(err); ok {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": fmt.Sprintf("Unable to update event. Error: %s", err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   ev,
	})
}

type eventStatusRequest struct {
	Status domain.EventStatus `json:"status"`
}

// ChangeEventStatus moves an event through its lifecycle.
func (s *Server) ChangeEventStatus(c *gin.Context) {
	var req eventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}
	ev, err := s.catalog.ChangeStatus(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Event status updated successfully",
		"event":   ev,
	})
}

// DeleteEvent soft-archives an event.
func (s *Server) DeleteEvent(c *gin.Context) {
	if err := s.catalog.SoftDelete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event archived successfully"})
}

// RestoreEvent reverses a soft delete.
func (s *Server) RestoreEvent(c *gin.Context) {
	ev, err := s.catalog.Restore(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Event restored successfully",
		"event":   ev,
	})
}

// PermanentDeleteEvent hard-removes an event.
func (s *Server) PermanentDeleteEvent(c *gin.Context) {
	if err := s.catalog.PermanentDelete(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event permanently deleted"})
}

// DuplicateEvent clones an event as a fresh draft.
func (s *Server) DuplicateEvent(c *gin.Context) {
	ev, err := s.catalog.Duplicate(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Event duplicated successfully",
		"event":   ev,
	})
}

// EventStats returns catalog-wide totals.
func (s *Server) EventStats(c *gin.Context) {
	stats, err := s.catalog.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
