// Package handlers implements the HTTP handlers for the events console.
// Route registration lives in internal/app; handlers push errors into
// gin's error list for the centralized ErrorHandler middleware.
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventdesk.io/eventdesk/internal/api/middleware"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/catalog"
	"eventdesk.io/eventdesk/internal/ledger"
	"eventdesk.io/eventdesk/internal/users"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	jwtCfg  middleware.JWTConfig
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	users   *users.Service
	trail   *audit.Trail
	health  HealthChecker
}

// HealthChecker reports storage connectivity for the health endpoint.
// May be nil when no backing store is attached.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ServerDeps holds all dependencies for creating a Server. Manual DI.
type ServerDeps struct {
	JWTCfg  middleware.JWTConfig
	Catalog *catalog.Catalog
	Ledger  *ledger.Ledger
	Users   *users.Service
	Trail   *audit.Trail
	Health  HealthChecker
}

// NewServer creates a Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		jwtCfg:  deps.JWTCfg,
		catalog: deps.Catalog,
		ledger:  deps.Ledger,
		users:   deps.Users,
		trail:   deps.Trail,
		health:  deps.Health,
	}
}

// pagination is the list envelope shared by the admin list endpoints.
type pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func paginate(page, limit int, total int64) pagination {
	if page < 1 {
		page = 1
	}
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: int64(page) < totalPages,
		HasPrevPage: page > 1 && total > 0,
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
