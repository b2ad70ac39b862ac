package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/repository"
)

// EventStore is the in-memory EventRepository.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventStore creates an empty event store.
func NewEventStore() *EventStore {
	return &EventStore{events: make(map[string]*domain.Event)}
}

func cloneEvent(ev *domain.Event) *domain.Event {
	out := *ev
	out.Tags = slices.Clone(ev.Tags)
	out.Recurring.DaysOfWeek = slices.Clone(ev.Recurring.DaysOfWeek)
	out.Recurring.CustomDates = slices.Clone(ev.Recurring.CustomDates)
	out.Registration.Fields = make([]domain.FieldDefinition, len(ev.Registration.Fields))
	for i, f := range ev.Registration.Fields {
		nf := f
		nf.Options = slices.Clone(f.Options)
		if f.Order != nil {
			order := *f.Order
			nf.Order = &order
		}
		out.Registration.Fields[i] = nf
	}
	if ev.Registration.MaxAttendees != nil {
		n := *ev.Registration.MaxAttendees
		out.Registration.MaxAttendees = &n
	}
	if ev.Registration.RegistrationDeadline != nil {
		d := *ev.Registration.RegistrationDeadline
		out.Registration.RegistrationDeadline = &d
	}
	if ev.Recurring.EndDate != nil {
		d := *ev.Recurring.EndDate
		out.Recurring.EndDate = &d
	}
	return &out
}

// Insert stores a new event, enforcing slug uniqueness as the MongoDB unique
// index would.
func (s *EventStore) Insert(_ context.Context, ev *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.Slug == ev.Slug {
			return fmt.Errorf("slug %q: %w", ev.Slug, apperrors.ErrAlreadyExists)
		}
	}
	s.events[ev.ID] = cloneEvent(ev)
	return nil
}

// Update replaces the stored document.
func (s *EventStore) Update(_ context.Context, ev *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[ev.ID]; !ok {
		return notFound("event", ev.ID)
	}
	for id, existing := range s.events {
		if id != ev.ID && existing.Slug == ev.Slug {
			return fmt.Errorf("slug %q: %w", ev.Slug, apperrors.ErrAlreadyExists)
		}
	}
	s.events[ev.ID] = cloneEvent(ev)
	return nil
}

// FindByID returns the event or ErrNotFound.
func (s *EventStore) FindByID(_ context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, notFound("event", id)
	}
	return cloneEvent(ev), nil
}

// FindBySlug returns the event with the given slug or ErrNotFound.
func (s *EventStore) FindBySlug(_ context.Context, slug string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.events {
		if ev.Slug == slug {
			return cloneEvent(ev), nil
		}
	}
	return nil, notFound("event", slug)
}

// SlugTaken reports whether another event already uses the slug.
func (s *EventStore) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, ev := range s.events {
		if ev.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the event permanently.
func (s *EventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return notFound("event", id)
	}
	delete(s.events, id)
	return nil
}

// List applies the admin filter with pagination.
func (s *EventStore) List(_ context.Context, f repository.EventFilter) ([]*domain.Event, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Event
	for _, ev := range s.events {
		if !f.IncludeArchived && ev.IsArchived {
			continue
		}
		if !f.Scope.Unrestricted && !f.Scope.Allows(ev.ID) {
			continue
		}
		if f.Category != "" && ev.Category != f.Category {
			continue
		}
		if f.Status != "" && ev.Status != f.Status {
			continue
		}
		if f.EventType != "" && ev.EventType != f.EventType {
			continue
		}
		if f.Featured != nil && ev.Featured != *f.Featured {
			continue
		}
		if f.Search != "" && !eventMatchesSearch(ev, f.Search) {
			continue
		}
		matched = append(matched, cloneEvent(ev))
	}

	descending := f.SortOrder != repository.SortAsc
	switch f.SortBy {
	case "title":
		sortSlice(matched, func(a, b *domain.Event) bool { return a.Title < b.Title }, descending)
	case "createdAt":
		sortSlice(matched, func(a, b *domain.Event) bool { return a.CreatedAt.Before(b.CreatedAt) }, descending)
	default:
		sortSlice(matched, func(a, b *domain.Event) bool { return a.EventDate.Before(b.EventDate) }, descending)
	}

	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

func eventMatchesSearch(ev *domain.Event, search string) bool {
	if containsFold(ev.Title, search) ||
		containsFold(ev.Description, search) ||
		containsFold(ev.ShortDescription, search) {
		return true
	}
	for _, tag := range ev.Tags {
		if containsFold(tag, search) {
			return true
		}
	}
	return false
}

// ListPublic applies the visitor filter (published, public events only).
func (s *EventStore) ListPublic(_ context.Context, f repository.PublicEventFilter) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Event
	for _, ev := range s.events {
		if ev.Status != domain.EventPublished || !ev.IsPublic {
			continue
		}
		if f.FeaturedOnly && !ev.Featured {
			continue
		}
		if f.Category != "" && ev.Category != f.Category {
			continue
		}
		if f.UpcomingOnly && ev.EventDate.Before(f.Now) {
			continue
		}
		matched = append(matched, cloneEvent(ev))
	}

	sortSlice(matched, func(a, b *domain.Event) bool { return a.EventDate.Before(b.EventDate) }, !f.SortAsc)
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// IncrementViews bumps the view counter.
func (s *EventStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return notFound("event", id)
	}
	ev.Analytics.Views++
	return nil
}

// Stats computes the catalog aggregate.
func (s *EventStore) Stats(_ context.Context, now time.Time) (*repository.EventStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &repository.EventStats{}
	for _, ev := range s.events {
		stats.Total++
		stats.TotalViews += ev.Analytics.Views
		stats.TotalShares += ev.Analytics.Shares
		switch ev.Status {
		case domain.EventPublished:
			stats.Published++
			if !ev.EventDate.Before(now) {
				stats.Upcoming++
			}
		case domain.EventDraft:
			stats.Draft++
		}
	}
	return stats, nil
}

// CategoryBreakdown tallies published events per category, most first.
func (s *EventStore) CategoryBreakdown(_ context.Context) ([]repository.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.EventCategory]int64)
	for _, ev := range s.events {
		if ev.Status == domain.EventPublished {
			counts[ev.Category]++
		}
	}
	out := make([]repository.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, repository.CategoryCount{Category: cat, Count: n})
	}
	sortSlice(out, func(a, b repository.CategoryCount) bool {
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.Category > b.Category
	}, true)
	return out, nil
}
