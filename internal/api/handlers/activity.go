package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/repository"
)

// ListActivity returns the audit trail, newest first. Super admin only.
func (s *Server) ListActivity(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	entries, total, err := s.trail.List(c.Request.Context(), repository.ActivityFilter{
		Action:       domain.Action(c.Query("action")),
		ResourceType: domain.ResourceType(c.Query("resourceType")),
		UserID:       c.Query("userId"),
		Start:        dateQuery(c, "startDate"),
		End:          dateQuery(c, "endDate"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []*domain.ActivityEntry{}
	}

	pg := paginate(page, limit, total)
	c.JSON(http.StatusOK, gin.H{
		"logs":        entries,
		"currentPage": pg.CurrentPage,
		"totalPages":  pg.TotalPages,
		"totalCount":  pg.TotalCount,
		"hasNextPage": pg.HasNextPage,
		"hasPrevPage": pg.HasPrevPage,
	})
}

// ActivityStats returns the audit aggregate. Super admin only.
func (s *Server) ActivityStats(c *gin.Context) {
	stats, err := s.trail.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func dateQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil
		}
	}
	return &t
}
