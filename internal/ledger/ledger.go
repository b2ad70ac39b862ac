// Package ledger owns registration records: public submission with
// capacity and waitlist accounting, administrative status changes and the
// export pipeline.
package ledger

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/domain"
	"eventdesk.io/eventdesk/internal/form"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository"
)

// Ledger is the registration service.
type Ledger struct {
	regs   repository.RegistrationRepository
	events repository.EventRepository
	trail  audit.Recorder

	// submitMu serializes the capacity/duplicate check per event, closing
	// the check-then-write race between concurrent submissions.
	submitMu sync.Mutex
	locks    map[string]*sync.Mutex
}

// New creates a Ledger.
func New(regs repository.RegistrationRepository, events repository.EventRepository, trail audit.Recorder) *Ledger {
	return &Ledger{
		regs:   regs,
		events: events,
		trail:  trail,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) eventLock(eventID string) *sync.Mutex {
	l.submitMu.Lock()
	defer l.submitMu.Unlock()
	mu, ok := l.locks[eventID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[eventID] = mu
	}
	return mu
}

// SubmitInput is a public registration submission.
type SubmitInput struct {
	EventID  string
	Email    string
	Data     domain.FormData
	Waiver   *domain.Waiver
	Metadata domain.SubmissionMetadata
}

// Submit admits a registration to an open event. The admission gate is the
// event's own registration settings, not the access policy: any caller may
// submit. Capacity overflow lands on the waitlist when enabled. Metadata is
// captured write-once.
func (l *Ledger) Submit(ctx context.Context, in SubmitInput) (*domain.Registration, error) {
	ev, err := l.events.FindByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeEventNotFound, "Event not found")
		}
		return nil, err
	}

	mu := l.eventLock(ev.ID)
	mu.Lock()
	defer mu.Unlock()

	active, err := l.CountActive(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	ev.Registration.CurrentAttendees = int(active)

	now := time.Now().UTC()
	if !form.IsRegistrationOpen(ev, now) {
		return nil, apperrors.BadRequest(apperrors.CodeEventNotOpen,
			"Registration is not open for this event")
	}
	if err := form.ValidateSubmission(ev.Registration.Fields, in.Data); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		taken, err := l.regs.HasActiveByEmail(ctx, ev.ID, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.Conflict(apperrors.CodeDuplicateRegistration,
				"This email is already registered for this event")
		}
	}

	status := domain.RegistrationConfirmed
	if ev.Registration.MaxAttendees != nil && int(active) >= *ev.Registration.MaxAttendees {
		status = domain.RegistrationWaitlisted
	}

	reg := &domain.Registration{
		ID:                 domain.NewID(),
		EventID:            ev.ID,
		Data:               in.Data,
		Status:             status,
		Email:              email,
		ConfirmationNumber: NewConfirmationNumber(),
		RegisteredAt:       now,
		IsWaitlisted:       status == domain.RegistrationWaitlisted,
		Waiver:             in.Waiver,
		Metadata:           in.Metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := l.regs.Insert(ctx, reg); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(apperrors.CodeDuplicateRegistration,
				"This email is already registered for this event")
		}
		return nil, err
	}

	logger.Info("registration submitted",
		zap.String("event_id", ev.ID),
		zap.String("confirmation", reg.ConfirmationNumber),
		zap.String("status", string(reg.Status)))
	l.record(ctx, nil, domain.ActionCreate, reg, "submitted")
	return reg, nil
}

// ChangeStatus moves a registration to a new status, keeping isWaitlisted
// in sync. Capacity is deliberately not re-checked: admins may override a
// full event.
func (l *Ledger) ChangeStatus(ctx context.Context, actor *access.Principal, id string, status domain.RegistrationStatus) (*domain.Registration, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidStatus,
			"Invalid status. Must be one of: pending, confirmed, cancelled, waitlisted")
	}
	reg, err := l.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	reg.Status = status
	reg.IsWaitlisted = status == domain.RegistrationWaitlisted
	reg.UpdatedAt = time.Now().UTC()
	if err := l.regs.Update(ctx, reg); err != nil {
		return nil, err
	}
	l.record(ctx, actor, domain.ActionUpdate, reg, "status -> "+string(status))
	return reg, nil
}

// UpdateInput is a partial administrative edit of one registration.
type UpdateInput struct {
	Notes  *string                    `json:"notes"`
	Data   *domain.FormData           `json:"registrationData"`
	Status *domain.RegistrationStatus `json:"status"`
}

// Update applies notes, submitted-data and status edits.
func (l *Ledger) Update(ctx context.Context, actor *access.Principal, id string, in UpdateInput) (*domain.Registration, error) {
	reg, err := l.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Notes != nil {
		reg.Notes = *in.Notes
	}
	if in.Data != nil {
		reg.Data = *in.Data
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.BadRequest(apperrors.CodeInvalidStatus,
				"Invalid status. Must be one of: pending, confirmed, cancelled, waitlisted")
		}
		reg.Status = *in.Status
		reg.IsWaitlisted = *in.Status == domain.RegistrationWaitlisted
	}
	reg.UpdatedAt = time.Now().UTC()
	if err := l.regs.Update(ctx, reg); err != nil {
		return nil, err
	}
	l.record(ctx, actor, domain.ActionUpdate, reg, "")
	return reg, nil
}

// BulkChangeStatus applies one status to many registrations in a single
// batched write. Ids outside the principal's scope are silently dropped;
// the returned count reflects documents actually modified.
func (l *Ledger) BulkChangeStatus(ctx context.Context, actor *access.Principal, ids []string, status domain.RegistrationStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Please provide registration IDs")
	}
	if !status.Valid() {
		return 0, apperrors.BadRequest(apperrors.CodeInvalidStatus,
			"Invalid status. Must be one of: pending, confirmed, cancelled, waitlisted")
	}

	allowed := make([]string, 0, len(ids))
	for _, id := range ids {
		reg, err := l.regs.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return 0, err
		}
		if actor.CanAccessEvent(reg.EventID) {
			allowed = append(allowed, id)
		}
	}
	if len(allowed) == 0 {
		return 0, nil
	}

	modified, err := l.regs.BulkSetStatus(ctx, allowed, status)
	if err != nil {
		return 0, err
	}
	logger.Info("bulk status update",
		zap.Int64("modified", modified),
		zap.String("status", string(status)))
	if l.trail != nil {
		l.trail.Record(ctx, actor, audit.Entry{
			Action:       domain.ActionUpdate,
			ResourceType: domain.ResourceRegistration,
			Details:      "bulk status -> " + string(status),
		})
	}
	return modified, nil
}

// SoftCancel marks the registration cancelled. Cancellation is not a
// delete: no delete permission is required, only event access.
func (l *Ledger) SoftCancel(ctx context.Context, actor *access.Principal, id string) error {
	reg, err := l.getScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	reg.Status = domain.RegistrationCancelled
	reg.IsWaitlisted = false
	reg.UpdatedAt = time.Now().UTC()
	if err := l.regs.Update(ctx, reg); err != nil {
		return err
	}
	l.record(ctx, actor, domain.ActionUpdate, reg, "cancelled")
	return nil
}

// PermanentDelete hard-removes the registration. Requires event access and
// the delete-registrations permission.
func (l *Ledger) PermanentDelete(ctx context.Context, actor *access.Principal, id string) error {
	reg, err := l.getScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if !actor.CanDeleteRegistrations() {
		return apperrors.Forbidden(apperrors.CodeForbidden, "Not authorized to delete registrations")
	}
	if err := l.regs.Delete(ctx, id); err != nil {
		return err
	}
	l.record(ctx, actor, domain.ActionDelete, reg, "permanent")
	return nil
}

// CountActive counts confirmed plus pending registrations for one event.
// This is the authoritative attendee count; any stored counter is a cached
// projection of it.
func (l *Ledger) CountActive(ctx context.Context, eventID string) (int64, error) {
	return l.regs.CountByStatus(ctx, eventID, domain.ActiveStatuses...)
}

// ListParams selects registrations for the admin list view.
type ListParams struct {
	Search    string
	Status    domain.RegistrationStatus
	EventID   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// List returns registrations visible to the principal. An explicit event
// filter outside the principal's scope is rejected rather than narrowed.
func (l *Ledger) List(ctx context.Context, actor *access.Principal, p ListParams) ([]*domain.Registration, int64, error) {
	if p.EventID != "" && !actor.CanAccessEvent(p.EventID) {
		return nil, 0, apperrors.Forbidden(apperrors.CodeForbidden, "Access denied to this event")
	}
	return l.regs.List(ctx, repository.RegistrationFilter{
		Search:    p.Search,
		Status:    p.Status,
		EventID:   p.EventID,
		Scope:     actor.EventScope(),
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Page:      p.Page,
		Limit:     p.Limit,
	})
}

// GetByID returns one registration within the principal's scope.
func (l *Ledger) GetByID(ctx context.Context, actor *access.Principal, id string) (*domain.Registration, error) {
	return l.getScoped(ctx, actor, id)
}

// TopEvent is one entry of the busiest-events ranking, enriched with the
// event's display fields.
type TopEvent struct {
	EventID    string    `json:"eventId"`
	EventTitle string    `json:"eventTitle"`
	EventDate  time.Time `json:"eventDate"`
	Count      int64     `json:"count"`
}

// Stats is the ledger aggregate for the admin dashboard.
type Stats struct {
	repository.StatusCounts
	TopEvents []TopEvent `json:"topEvents"`
}

// Stats returns per-status totals and the ten busiest events within the
// principal's scope.
func (l *Ledger) Stats(ctx context.Context, actor *access.Principal) (*Stats, error) {
	scope := actor.EventScope()
	counts, err := l.regs.Stats(ctx, scope)
	if err != nil {
		return nil, err
	}
	top, err := l.regs.TopEvents(ctx, scope, 10)
	if err != nil {
		return nil, err
	}
	out := &Stats{StatusCounts: *counts}
	for _, entry := range top {
		te := TopEvent{EventID: entry.EventID, Count: entry.Count}
		if ev, err := l.events.FindByID(ctx, entry.EventID); err == nil {
			te.EventTitle = ev.Title
			te.EventDate = ev.EventDate
		}
		out.TopEvents = append(out.TopEvents, te)
	}
	return out, nil
}

func (l *Ledger) getScoped(ctx context.Context, actor *access.Principal, id string) (*domain.Registration, error) {
	reg, err := l.regs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeRegistrationNotFound, "Registration not found")
		}
		return nil, err
	}
	if !actor.CanAccessEvent(reg.EventID) {
		return nil, apperrors.Forbidden(apperrors.CodeForbidden, "Access denied to this event")
	}
	return reg, nil
}

func (l *Ledger) record(ctx context.Context, actor *access.Principal, action domain.Action, reg *domain.Registration, details string) {
	if l.trail == nil {
		return
	}
	l.trail.Record(ctx, actor, audit.Entry{
		Action:       action,
		ResourceType: domain.ResourceRegistration,
		ResourceID:   reg.ID,
		ResourceName: reg.ConfirmationNumber,
		Details:      details,
	})
}

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewConfirmationNumber builds a REG-<base36 timestamp>-<6 base36 random>
// token, uppercased. Collisions are treated as practically impossible and
// not re-checked; the storage index is the final guard.
func NewConfirmationNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = base36Upper[int(b)%len(base36Upper)]
	}
	return "REG-" + ts + "-" + string(buf)
}
