package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/ledger"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// PublicUpcomingEvents lists published public events with a future date.
func (s *Server) PublicUpcomingEvents(c *gin.Context) {
	events, err := s.catalog.ListUpcoming(c.Request.Context(), intQuery(c, "limit", 10))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": orEmpty(events)})
}

// PublicFeaturedEvents lists upcoming featured events.
func (s *Server) PublicFeaturedEvents(c *gin.Context) {
	events, err := s.catalog.ListFeatured(c.Request.Context(), intQuery(c, "limit", 5))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": orEmpty(events)})
}

// PublicEventsByCategory lists published public events in one category.
func (s *Server) PublicEventsByCategory(c *gin.Context) {
	events, err := s.catalog.ListByCategory(c.Request.Context(),
		domain.EventCategory(c.Param("category")), intQuery(c, "limit", 10))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": orEmpty(events)})
}

// PublicEventBySlug returns one event by its public slug. The view counter
// bumps in the background.
func (s *Server) PublicEventBySlug(c *gin.Context) {
	ev, err := s.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": ev})
}

type registerRequest struct {
	Email  string          `json:"email"`
	Data   domain.FormData `json:"registrationData"`
	Waiver *domain.Waiver  `json:"waiver"`
}

// Register is the public registration submission endpoint. Client metadata
// is captured server-side and stored write-once.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Invalid request body"))
		return
	}

	reg, err := s.ledger.Submit(c.Request.Context(), ledger.SubmitInput{
		EventID: c.Param("id"),
		Email:   req.Email,
		Data:    req.Data,
		Waiver:  req.Waiver,
		Metadata: domain.SubmissionMetadata{
			UserAgent: c.Request.UserAgent(),
			IPAddress: c.ClientIP(),
			Referrer:  c.Request.Referer(),
		},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Registration submitted successfully",
		"registration": reg,
	})
}

func orEmpty(events []*domain.Event) []*domain.Event {
	if events == nil {
		return []*domain.Event{}
	}
	return events
}
