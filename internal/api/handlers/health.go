package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports process liveness and, when a store is attached, storage
// connectivity.
func (s *Server) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if s.health != nil {
		if err := s.health.Ping(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{"status": status})
}
