// Package catalog owns event records: slug uniqueness, lifecycle and
// archival state, duplication, public listings and catalog statistics.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/form"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/pkg/worker"
	"eventdesk.io/eventdesk/internal/repository"
)

const (
	defaultTimezone = "America/Indiana/Indianapolis"
	shortDescLimit  = 297
	maxOccurrences  = 366
)

// Catalog is the event catalog service.
type Catalog struct {
	events repository.EventRepository
	regs   repository.RegistrationRepository
	trail  audit.Recorder
	pool   *worker.Pool
}

// New creates a Catalog. pool may be nil, in which case view-count
// increments run inline.
func New(events repository.EventRepository, regs repository.RegistrationRepository, trail audit.Recorder, pool *worker.Pool) *Catalog {
	return &Catalog{events: events, regs: regs, trail: trail, pool: pool}
}

// CreateInput carries the fields accepted on event creation. Zero values
// fall back to catalog defaults.
type CreateInput struct {
	Title            string                       `json:"title"`
	Description      string                       `json:"description"`
	ShortDescription string                       `json:"shortDescription"`
	Category         domain.EventCategory         `json:"category"`
	EventType        domain.EventType             `json:"eventType"`
	Status           domain.EventStatus           `json:"status"`
	EventDate        time.Time                    `json:"eventDate"`
	StartTime        string                       `json:"startTime"`
	EndTime          string                       `json:"endTime"`
	Timezone         string                       `json:"timezone"`
	Location         *domain.Location             `json:"location"`
	Registration     *domain.RegistrationSettings `json:"registration"`
	Tags             []string                     `json:"tags"`
	Featured         bool                         `json:"featured"`
	Recurring        *domain.Recurrence           `json:"recurring"`
	IsPublic         *bool                        `json:"isPublic"`
}

// UpdateInput carries a partial event update. Nil fields are untouched;
// Registration and Recurring replace their sub-documents wholesale.
type UpdateInput struct {
	Title            *string                      `json:"title"`
	Description      *string                      `json:"description"`
	ShortDescription *string                      `json:"shortDescription"`
	Category         *domain.EventCategory        `json:"category"`
	EventType        *domain.EventType            `json:"eventType"`
	Status           *domain.EventStatus          `json:"status"`
	EventDate        *time.Time                   `json:"eventDate"`
	StartTime        *string                      `json:"startTime"`
	EndTime          *string                      `json:"endTime"`
	Timezone         *string                      `json:"timezone"`
	Location         *domain.Location             `json:"location"`
	Registration     *domain.RegistrationSettings `json:"registration"`
	Tags             []string                     `json:"tags"`
	Featured         *bool                        `json:"featured"`
	Recurring        *domain.Recurrence           `json:"recurring"`
	IsPublic         *bool                        `json:"isPublic"`
}

// Create validates the input, generates a unique slug and stores the event.
func (c *Catalog) Create(ctx context.Context, actor *access.Principal, in CreateInput) (*domain.Event, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.EventDate.IsZero() {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Title, description, and event date are required")
	}
	if err := checkTimeOrder(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := &domain.Event{
		ID:               domain.NewID(),
		Title:            in.Title,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Category:         in.Category,
		EventType:        in.EventType,
		Status:           in.Status,
		EventDate:        in.EventDate,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		Timezone:         in.Timezone,
		Tags:             NormalizeTags(in.Tags),
		Featured:         in.Featured,
		IsPublic:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if ev.Category == "" {
		ev.Category = domain.CategoryCommunityService
	}
	if ev.EventType == "" {
		ev.EventType = domain.EventInPerson
	}
	if ev.Status == "" {
		ev.Status = domain.EventDraft
	}
	if !ev.Status.Valid() {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
			fmt.Sprintf("Invalid status: %s", ev.Status))
	}
	if ev.Timezone == "" {
		ev.Timezone = defaultTimezone
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.Registration != nil {
		fields, err := form.ValidateFieldDefinitions(in.Registration.Fields)
		if err != nil {
			return nil, err
		}
		ev.Registration = *in.Registration
		ev.Registration.Fields = fields
		ev.Registration.CurrentAttendees = 0
	}
	if in.Recurring != nil {
		ev.Recurring = normalizeRecurrence(*in.Recurring)
	}
	if in.IsPublic != nil {
		ev.IsPublic = *in.IsPublic
	}
	if ev.ShortDescription == "" && ev.Description != "" {
		ev.ShortDescription = deriveShortDescription(ev.Description)
	}
	if err := checkDeadline(ev.Registration.RegistrationDeadline, ev.EventDate); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, c.events, ev.Title, "")
	if err != nil {
		return nil, err
	}
	ev.Slug = slug

	if err := c.events.Insert(ctx, ev); err != nil {
		return nil, err
	}
	logger.Info("event created", zap.String("event_id", ev.ID), zap.String("slug", ev.Slug))
	c.record(ctx, actor, domain.ActionCreate, ev, "")
	return ev, nil
}

// Update applies a partial update. The slug is recomputed only when the
// title actually changes, excluding the event's own id from the collision
// search.
func (c *Catalog) Update(ctx context.Context, actor *access.Principal, id string, in UpdateInput) (*domain.Event, error) {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && *in.Title != ev.Title {
		slug, err := uniqueSlug(ctx, c.events, *in.Title, id)
		if err != nil {
			return nil, err
		}
		ev.Title = *in.Title
		ev.Slug = slug
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.ShortDescription != nil {
		ev.ShortDescription = *in.ShortDescription
	}
	if in.Category != nil {
		ev.Category = *in.Category
	}
	if in.EventType != nil {
		ev.EventType = *in.EventType
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
				fmt.Sprintf("Invalid status: %s", *in.Status))
		}
		ev.Status = *in.Status
	}
	if in.EventDate != nil {
		ev.EventDate = *in.EventDate
	}
	if in.StartTime != nil {
		ev.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		ev.EndTime = *in.EndTime
	}
	if in.Timezone != nil {
		ev.Timezone = *in.Timezone
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.Registration != nil {
		fields, err := form.ValidateFieldDefinitions(in.Registration.Fields)
		if err != nil {
			return nil, err
		}
		current := ev.Registration.CurrentAttendees
		ev.Registration = *in.Registration
		ev.Registration.Fields = fields
		ev.Registration.CurrentAttendees = current
	}
	if in.Tags != nil {
		ev.Tags = NormalizeTags(in.Tags)
	}
	if in.Featured != nil {
		ev.Featured = *in.Featured
	}
	if in.Recurring != nil {
		ev.Recurring = normalizeRecurrence(*in.Recurring)
	}
	if in.IsPublic != nil {
		ev.IsPublic = *in.IsPublic
	}

	if err := checkTimeOrder(ev.StartTime, ev.EndTime); err != nil {
		return nil, err
	}
	if err := checkDeadline(ev.Registration.RegistrationDeadline, ev.EventDate); err != nil {
		return nil, err
	}
	ev.UpdatedAt = time.Now().UTC()

	if err := c.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	c.record(ctx, actor, domain.ActionUpdate, ev, "")
	return ev, nil
}

// SoftDelete archives the event: status=archived, isArchived, hidden from
// the public catalog. History is preserved.
func (c *Catalog) SoftDelete(ctx context.Context, actor *access.Principal, id string) error {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	ev.Status = domain.EventArchived
	ev.IsArchived = true
	ev.IsPublic = false
	ev.UpdatedAt = time.Now().UTC()
	if err := c.events.Update(ctx, ev); err != nil {
		return err
	}
	logger.Info("event archived", zap.String("event_id", id))
	c.record(ctx, actor, domain.ActionDelete, ev, "archived")
	return nil
}

// Restore reverses a soft delete back to a public draft.
func (c *Catalog) Restore(ctx context.Context, actor *access.Principal, id string) (*domain.Event, error) {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ev.Status = domain.EventDraft
	ev.IsArchived = false
	ev.IsPublic = true
	ev.UpdatedAt = time.Now().UTC()
	if err := c.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	c.record(ctx, actor, domain.ActionUpdate, ev, "restored")
	return ev, nil
}

// PermanentDelete hard-removes the event. Callers must have authorized via
// the access policy's delete permission.
func (c *Catalog) PermanentDelete(ctx context.Context, actor *access.Principal, id string) error {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.CanDeleteEvents() {
		return apperrors.Forbidden(apperrors.CodeForbidden, "Not authorized to delete events")
	}
	if err := c.events.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("event permanently deleted", zap.String("event_id", id))
	c.record(ctx, actor, domain.ActionDelete, ev, "permanent")
	return nil
}

// Duplicate copies the event under a " (Copy)" title with a fresh slug,
// forced back to draft, not featured, analytics zeroed.
func (c *Catalog) Duplicate(ctx context.Context, actor *access.Principal, id string) (*domain.Event, error) {
	src, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	title := src.Title + " (Copy)"
	slug, err := uniqueSlug(ctx, c.events, title, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dup := *src
	dup.ID = domain.NewID()
	dup.Title = title
	dup.Slug = slug
	dup.Status = domain.EventDraft
	dup.Featured = false
	dup.Analytics = domain.Analytics{}
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := c.events.Insert(ctx, &dup); err != nil {
		return nil, err
	}
	c.record(ctx, actor, domain.ActionCreate, &dup, "duplicated from "+src.ID)
	return &dup, nil
}

// ChangeStatus moves the event to a new lifecycle status.
func (c *Catalog) ChangeStatus(ctx context.Context, actor *access.Principal, id string, status domain.EventStatus) (*domain.Event, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidStatus,
			"Invalid status. Must be one of: draft, published, cancelled, completed, archived")
	}
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ev.Status = status
	ev.UpdatedAt = time.Now().UTC()
	if err := c.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	c.record(ctx, actor, domain.ActionUpdate, ev, "status -> "+string(status))
	return ev, nil
}

// ListParams selects events for the admin list view.
type ListParams struct {
	Search          string
	Category        domain.EventCategory
	Status          domain.EventStatus
	EventType       domain.EventType
	Featured        *bool
	IncludeArchived bool
	SortBy          string
	SortOrder       string
	Page            int
	Limit           int
}

// List returns events visible to the principal with the matching total.
func (c *Catalog) List(ctx context.Context, actor *access.Principal, p ListParams) ([]*domain.Event, int64, error) {
	return c.events.List(ctx, repository.EventFilter{
		Search:          p.Search,
		Category:        p.Category,
		Status:          p.Status,
		EventType:       p.EventType,
		Featured:        p.Featured,
		IncludeArchived: p.IncludeArchived,
		Scope:           actor.EventScope(),
		SortBy:          p.SortBy,
		SortOrder:       p.SortOrder,
		Page:            p.Page,
		Limit:           p.Limit,
	})
}

// GetByID returns one event within the principal's scope, with the cached
// attendee counter refreshed from the live ledger count.
func (c *Catalog) GetByID(ctx context.Context, actor *access.Principal, id string) (*domain.Event, error) {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c.refreshAttendees(ctx, ev)
	return ev, nil
}

// ListOccurrences expands an event's recurrence rule into the concrete
// dates it will run on, starting at the event date. A zero until defaults
// to one year out.
func (c *Catalog) ListOccurrences(ctx context.Context, actor *access.Principal, id string, until time.Time, max int) ([]time.Time, error) {
	ev, err := c.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if until.IsZero() {
		until = ev.EventDate.AddDate(1, 0, 0)
	}
	if max <= 0 || max > maxOccurrences {
		max = maxOccurrences
	}
	return Occurrences(ev.Recurring, ev.EventDate, until, max), nil
}

// GetBySlug returns one event by public slug and bumps its view counter in
// the background. The increment never fails the read.
func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ev, err := c.events.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err)
	}
	c.refreshAttendees(ctx, ev)

	id := ev.ID
	bump := func(ctx context.Context) {
		if err := c.events.IncrementViews(ctx, id); err != nil {
			logger.Warn("view increment failed", zap.String("event_id", id), zap.Error(err))
		}
	}
	if c.pool != nil {
		if err := c.pool.SubmitDetached(bump); err != nil {
			logger.Warn("view increment not scheduled", zap.String("event_id", id), zap.Error(err))
		}
	} else {
		bump(ctx)
	}
	return ev, nil
}

// ListUpcoming returns published public events with a future date, soonest
// first.
func (c *Catalog) ListUpcoming(ctx context.Context, limit int) ([]*domain.Event, error) {
	return c.events.ListPublic(ctx, repository.PublicEventFilter{
		UpcomingOnly: true,
		Now:          time.Now(),
		SortAsc:      true,
		Limit:        limit,
	})
}

// ListFeatured returns upcoming featured events, soonest first.
func (c *Catalog) ListFeatured(ctx context.Context, limit int) ([]*domain.Event, error) {
	return c.events.ListPublic(ctx, repository.PublicEventFilter{
		FeaturedOnly: true,
		UpcomingOnly: true,
		Now:          time.Now(),
		SortAsc:      true,
		Limit:        limit,
	})
}

// ListByCategory returns published public events in a category, newest
// date first.
func (c *Catalog) ListByCategory(ctx context.Context, category domain.EventCategory, limit int) ([]*domain.Event, error) {
	return c.events.ListPublic(ctx, repository.PublicEventFilter{
		Category: category,
		Limit:    limit,
	})
}

// Stats bundles the catalog aggregate with the per-category breakdown.
type Stats struct {
	repository.EventStats
	CategoryBreakdown []repository.CategoryCount `json:"categoryBreakdown"`
}

// Stats returns catalog-wide totals for the admin dashboard.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	totals, err := c.events.Stats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	breakdown, err := c.events.CategoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{EventStats: *totals, CategoryBreakdown: breakdown}, nil
}

// getScoped loads an event and enforces the principal's event scope.
func (c *Catalog) getScoped(ctx context.Context, actor *access.Principal, id string) (*domain.Event, error) {
	ev, err := c.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !actor.CanAccessEvent(ev.ID) {
		return nil, apperrors.Forbidden(apperrors.CodeForbidden, "Access denied to this event")
	}
	return ev, nil
}

// refreshAttendees overwrites the cached counter with the live active count.
// Best effort: a count failure leaves the stored projection in place.
func (c *Catalog) refreshAttendees(ctx context.Context, ev *domain.Event) {
	n, err := c.regs.CountByStatus(ctx, ev.ID, domain.ActiveStatuses...)
	if err != nil {
		logger.Warn("active count failed", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	ev.Registration.CurrentAttendees = int(n)
}

func (c *Catalog) record(ctx context.Context, actor *access.Principal, action domain.Action, ev *domain.Event, details string) {
	if c.trail == nil {
		return
	}
	c.trail.Record(ctx, actor, audit.Entry{
		Action:       action,
		ResourceType: domain.ResourceEvent,
		ResourceID:   ev.ID,
		ResourceName: ev.Title,
		Details:      details,
	})
}

// NormalizeTags splits comma-joined entries, trims, lowercases and drops
// empties.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				out = append(out, tag)
			}
		}
	}
	return out
}

// checkTimeOrder validates end after start when both HH:mm strings are set.
// Unparseable values are ignored, matching the permissive source behavior.
func checkTimeOrder(startTime, endTime string) error {
	if startTime == "" || endTime == "" {
		return nil
	}
	start, err1 := time.Parse("15:04", startTime)
	end, err2 := time.Parse("15:04", endTime)
	if err1 != nil || err2 != nil {
		return nil
	}
	if !end.After(start) {
		return apperrors.BadRequest(apperrors.CodeValidationFailed,
			"End time must be after start time")
	}
	return nil
}

func checkDeadline(deadline *time.Time, eventDate time.Time) error {
	if deadline == nil || eventDate.IsZero() {
		return nil
	}
	if deadline.After(eventDate) {
		return apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Registration deadline must be before event start date")
	}
	return nil
}

// normalizeRecurrence coerces a replacement recurrence sub-document:
// turning recurrence off clears the whole rule, turning it on defaults the
// cadence to weekly.
func normalizeRecurrence(rec domain.Recurrence) domain.Recurrence {
	if !rec.IsRecurring {
		return domain.Recurrence{IsRecurring: false}
	}
	if rec.Frequency == "" {
		rec.Frequency = domain.FreqWeekly
	}
	if rec.Interval < 1 {
		rec.Interval = 1
	}
	if rec.MonthlyType == "" {
		rec.MonthlyType = domain.MonthlyByDate
	}
	return rec
}

func deriveShortDescription(description string) string {
	if len(description) > shortDescLimit {
		return description[:shortDescLimit] + "..."
	}
	return description
}

// notFoundOr maps storage-level not-found sentinels onto the API error,
// passing other failures through untouched.
func notFoundOr(err error) error {
	if appErr, ok := apperrors.IsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(apperrors.CodeEventNotFound, "Event not found")
	}
	return err
}
