package memory

import (
	"context"
	"sync"
	"time"

	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/repository"
)

// ActivityStore is the in-memory ActivityRepository. Append-only.
type ActivityStore struct {
	mu      sync.RWMutex
	entries []*domain.ActivityEntry
}

// NewActivityStore creates an empty activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

// Insert appends one audit entry.
func (s *ActivityStore) Insert(_ context.Context, e *domain.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := *e
	s.entries = append(s.entries, &entry)
	return nil
}

// List applies the filter, newest entries first.
func (s *ActivityStore) List(_ context.Context, f repository.ActivityFilter) ([]*domain.ActivityEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.ActivityEntry
	for _, e := range s.entries {
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && e.ResourceType != f.ResourceType {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.Start != nil && e.CreatedAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && e.CreatedAt.After(*f.End) {
			continue
		}
		entry := *e
		matched = append(matched, &entry)
	}

	sortSlice(matched, func(a, b *domain.ActivityEntry) bool { return a.CreatedAt.Before(b.CreatedAt) }, true)
	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

// Stats computes the audit aggregate.
func (s *ActivityStore) Stats(_ context.Context, now time.Time) (*repository.ActivityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats := &repository.ActivityStats{}
	actions := make(map[domain.Action]int64)
	resources := make(map[domain.ResourceType]int64)
	for _, e := range s.entries {
		stats.Total++
		if !e.CreatedAt.Before(dayStart) {
			stats.Today++
		}
		actions[e.Action]++
		resources[e.ResourceType]++
	}
	for action, n := range actions {
		stats.Actions = append(stats.Actions, repository.ActionCount{Action: action, Count: n})
	}
	for rt, n := range resources {
		stats.Resources = append(stats.Resources, repository.ResourceCount{ResourceType: rt, Count: n})
	}
	sortSlice(stats.Actions, func(a, b repository.ActionCount) bool {
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.Action > b.Action
	}, true)
	sortSlice(stats.Resources, func(a, b repository.ResourceCount) bool {
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.ResourceType > b.ResourceType
	}, true)
	return stats, nil
}
