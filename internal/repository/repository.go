// Package repository declares the persistence contracts of the events
// console. The mongodb package implements them against MongoDB; the memory
// package provides the in-process implementation used by tests and seeding.
// Implementations return errors wrapping apperrors.ErrNotFound for missing
// entities and apperrors.ErrAlreadyExists for uniqueness violations.
package repository

import (
	"context"
	"time"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
)

// SortOrder values accepted by list filters.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// EventFilter selects events for the admin listing. A zero Limit returns
// every match (exports, stats); Scope narrows to the principal's reach.
type EventFilter struct {
	Search          string
	Category        domain.EventCategory
	Status          domain.EventStatus
	EventType       domain.EventType
	Featured        *bool
	IncludeArchived bool
	Scope           access.Scope
	SortBy          string
	SortOrder       string
	Page            int
	Limit           int
}

// PublicEventFilter selects published, public events for visitor listings.
type PublicEventFilter struct {
	Category     domain.EventCategory
	FeaturedOnly bool
	UpcomingOnly bool
	Now          time.Time
	SortAsc      bool
	Limit        int
}

// EventStats is the catalog aggregate consumed by the admin dashboard.
type EventStats struct {
	Total       int64 `json:"totalEvents"`
	Published   int64 `json:"publishedEvents"`
	Draft       int64 `json:"draftEvents"`
	Upcoming    int64 `json:"upcomingEvents"`
	TotalViews  int64 `json:"totalViews"`
	TotalShares int64 `json:"totalShares"`
}

// CategoryCount is one row of the published-event category breakdown.
type CategoryCount struct {
	Category domain.EventCategory `json:"category"`
	Count    int64                `json:"count"`
}

// EventRepository persists the event catalog.
type EventRepository interface {
	Insert(ctx context.Context, ev *domain.Event) error
	Update(ctx context.Context, ev *domain.Event) error
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Event, error)
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f EventFilter) ([]*domain.Event, int64, error)
	ListPublic(ctx context.Context, f PublicEventFilter) ([]*domain.Event, error)
	// IncrementViews bumps analytics.views outside the read contract.
	IncrementViews(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*EventStats, error)
	CategoryBreakdown(ctx context.Context) ([]CategoryCount, error)
}

// RegistrationFilter selects registrations. A zero Limit returns every match.
type RegistrationFilter struct {
	Search    string
	Status    domain.RegistrationStatus
	EventID   string
	Scope     access.Scope
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// StatusCounts is the per-status registration tally.
type StatusCounts struct {
	Total      int64 `json:"totalRegistrations"`
	Confirmed  int64 `json:"confirmed"`
	Pending    int64 `json:"pending"`
	Cancelled  int64 `json:"cancelled"`
	Waitlisted int64 `json:"waitlisted"`
}

// EventCount is an active-registration tally for one event.
type EventCount struct {
	EventID string `json:"eventId"`
	Count   int64  `json:"count"`
}

// RegistrationRepository persists the registration ledger.
type RegistrationRepository interface {
	Insert(ctx context.Context, r *domain.Registration) error
	Update(ctx context.Context, r *domain.Registration) error
	FindByID(ctx context.Context, id string) (*domain.Registration, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f RegistrationFilter) ([]*domain.Registration, int64, error)
	// HasActiveByEmail reports a non-cancelled registration for (event, email).
	HasActiveByEmail(ctx context.Context, eventID, email string) (bool, error)
	CountByStatus(ctx context.Context, eventID string, statuses ...domain.RegistrationStatus) (int64, error)
	// BulkSetStatus applies one status to many ids in a single batched write
	// and returns the number of documents modified.
	BulkSetStatus(ctx context.Context, ids []string, status domain.RegistrationStatus) (int64, error)
	Stats(ctx context.Context, scope access.Scope) (*StatusCounts, error)
	TopEvents(ctx context.Context, scope access.Scope, limit int) ([]EventCount, error)
}

// UserRepository persists administrative accounts.
type UserRepository interface {
	Insert(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// ActivityFilter selects audit entries for the super-admin log view.
type ActivityFilter struct {
	Action       domain.Action
	ResourceType domain.ResourceType
	UserID       string
	Start        *time.Time
	End          *time.Time
	Page         int
	Limit        int
}

// ActionCount tallies entries per action.
type ActionCount struct {
	Action domain.Action `json:"action"`
	Count  int64         `json:"count"`
}

// ResourceCount tallies entries per resource type.
type ResourceCount struct {
	ResourceType domain.ResourceType `json:"resourceType"`
	Count        int64               `json:"count"`
}

// ActivityStats is the audit aggregate.
type ActivityStats struct {
	Total     int64           `json:"totalLogs"`
	Today     int64           `json:"todayLogs"`
	Actions   []ActionCount   `json:"actionStats"`
	Resources []ResourceCount `json:"resourceStats"`
}

// ActivityRepository persists audit entries. Append-only: no update or
// delete operations exist.
type ActivityRepository interface {
	Insert(ctx context.Context, e *domain.ActivityEntry) error
	List(ctx context.Context, f ActivityFilter) ([]*domain.ActivityEntry, int64, error)
	Stats(ctx context.Context, now time.Time) (*ActivityStats, error)
}
