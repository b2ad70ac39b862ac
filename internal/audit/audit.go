// Package audit records administrative actions in an append-only trail.
//
// Recording is synchronous but non-fatal: a failed write is logged and the
// triggering operation proceeds, so audit storage problems never block the
// console.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository"
)

// Entry describes one action to record. Actor identity comes from the
// principal, not from the entry.
type Entry struct {
	Action       domain.Action
	ResourceType domain.ResourceType
	ResourceID   string
	ResourceName string
	Details      string
	IPAddress    string
}

// Recorder writes audit entries.
type Recorder interface {
	Record(ctx context.Context, actor *access.Principal, e Entry)
}

// Trail is the repository-backed Recorder and query service.
type Trail struct {
	repo repository.ActivityRepository
}

// NewTrail creates a Trail over the given repository.
func NewTrail(repo repository.ActivityRepository) *Trail {
	return &Trail{repo: repo}
}

// Record persists one entry with a snapshot of the actor. The snapshot keeps
// history readable after the actor is renamed or deleted.
func (t *Trail) Record(ctx context.Context, actor *access.Principal, e Entry) {
	entry := &domain.ActivityEntry{
		ID:           domain.NewID(),
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ResourceName: e.ResourceName,
		Details:      e.Details,
		IPAddress:    e.IPAddress,
		CreatedAt:    time.Now().UTC(),
	}
	if actor != nil {
		entry.UserID = actor.UserID
		entry.UserName = actor.Name
		entry.UserEmail = actor.Email
	}
	if err := t.repo.Insert(ctx, entry); err != nil {
		logger.Error("audit record failed",
			zap.String("action", string(e.Action)),
			zap.String("resource_type", string(e.ResourceType)),
			zap.String("resource_id", e.ResourceID),
			zap.Error(err))
	}
}

// List returns audit entries matching the filter, newest first.
func (t *Trail) List(ctx context.Context, f repository.ActivityFilter) ([]*domain.ActivityEntry, int64, error) {
	return t.repo.List(ctx, f)
}

// Stats returns the audit aggregate for the dashboard.
func (t *Trail) Stats(ctx context.Context) (*repository.ActivityStats, error) {
	return t.repo.Stats(ctx, time.Now())
}
