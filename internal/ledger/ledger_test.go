package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository/memory"
)

func init() {
	_ = logger.Init("error", "json")
}

func superAdmin() *access.Principal {
	return &access.Principal{UserID: "admin-1", Role: domain.RoleSuperAdmin}
}

func eventAdmin(eventIDs ...string) *access.Principal {
	return &access.Principal{UserID: "admin-2", Role: domain.RoleEventAdmin, AssignedEvents: eventIDs}
}

func intp(n int) *int { return &n }

func newLedger(t *testing.T) (*Ledger, *memory.Stores) {
	t.Helper()
	stores := memory.NewStores()
	return New(stores.Registrations, stores.Events, nil), stores
}

func openEvent(t *testing.T, stores *memory.Stores, id string, mutate func(*domain.Event)) *domain.Event {
	t.Helper()
	ev := &domain.Event{
		ID:        id,
		Title:     "Event " + id,
		Slug:      "event-" + id,
		Status:    domain.EventPublished,
		EventDate: time.Now().AddDate(0, 1, 0),
		IsPublic:  true,
		Registration: domain.RegistrationSettings{
			IsRequired: true,
			IsOpen:     true,
		},
	}
	if mutate != nil {
		mutate(ev)
	}
	require.NoError(t, stores.Events.Insert(context.Background(), ev))
	return ev
}

func submit(t *testing.T, l *Ledger, eventID, email string) *domain.Registration {
	t.Helper()
	reg, err := l.Submit(context.Background(), SubmitInput{EventID: eventID, Email: email})
	require.NoError(t, err)
	return reg
}

func TestSubmit(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)

	data := domain.NewFormData()
	data.Set("name", "Amina")
	reg, err := l.Submit(ctx, SubmitInput{
		EventID: "ev1",
		Email:   "  Amina@Example.ORG ",
		Data:    data,
		Metadata: domain.SubmissionMetadata{
			UserAgent: "test-agent", IPAddress: "203.0.113.7",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RegistrationConfirmed, reg.Status)
	assert.Equal(t, "amina@example.org", reg.Email)
	assert.False(t, reg.IsWaitlisted)
	assert.Regexp(t, `^REG-[0-9A-Z]+-[0-9A-Z]{6}$`, reg.ConfirmationNumber)
	assert.Equal(t, "203.0.113.7", reg.Metadata.IPAddress)
}

func TestSubmitGates(t *testing.T) {
	t.Parallel()

	t.Run("unknown event", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t)
		_, err := l.Submit(context.Background(), SubmitInput{EventID: "nope"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEventNotFound))
	})

	t.Run("registration not required", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.IsRequired = false
		})
		_, err := l.Submit(context.Background(), SubmitInput{EventID: "ev1"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEventNotOpen))
	})

	t.Run("deadline passed", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		past := time.Now().Add(-time.Hour)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.RegistrationDeadline = &past
		})
		_, err := l.Submit(context.Background(), SubmitInput{EventID: "ev1"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEventNotOpen))
	})

	t.Run("required field missing", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.Fields = []domain.FieldDefinition{
				{Name: "name", Type: domain.FieldText, Required: true},
			}
		})
		_, err := l.Submit(context.Background(), SubmitInput{EventID: "ev1"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})
}

func TestSubmitCapacityAndWaitlist(t *testing.T) {
	t.Parallel()

	t.Run("overflow lands on waitlist", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(2)
			ev.Registration.WaitlistEnabled = true
		})

		first := submit(t, l, "ev1", "a@example.org")
		second := submit(t, l, "ev1", "b@example.org")
		third := submit(t, l, "ev1", "c@example.org")

		assert.Equal(t, domain.RegistrationConfirmed, first.Status)
		assert.Equal(t, domain.RegistrationConfirmed, second.Status)
		assert.Equal(t, domain.RegistrationWaitlisted, third.Status)
		assert.True(t, third.IsWaitlisted)
	})

	t.Run("full event without waitlist closes", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(1)
		})

		submit(t, l, "ev1", "a@example.org")
		_, err := l.Submit(context.Background(), SubmitInput{EventID: "ev1", Email: "b@example.org"})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEventNotOpen))
	})

	t.Run("cancellation frees a spot", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(1)
			ev.Registration.WaitlistEnabled = true
		})

		first := submit(t, l, "ev1", "a@example.org")
		require.NoError(t, l.SoftCancel(context.Background(), superAdmin(), first.ID))

		second := submit(t, l, "ev1", "b@example.org")
		assert.Equal(t, domain.RegistrationConfirmed, second.Status)
	})

	t.Run("concurrent submissions never exceed capacity", func(t *testing.T) {
		t.Parallel()
		l, stores := newLedger(t)
		openEvent(t, stores, "ev1", func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(3)
			ev.Registration.WaitlistEnabled = true
		})

		var g errgroup.Group
		for i := 0; i < 10; i++ {
			email := fmt.Sprintf("p%d@example.org", i)
			g.Go(func() error {
				_, err := l.Submit(context.Background(), SubmitInput{EventID: "ev1", Email: email})
				return err
			})
		}
		require.NoError(t, g.Wait())

		active, err := l.CountActive(context.Background(), "ev1")
		require.NoError(t, err)
		assert.EqualValues(t, 3, active)

		waitlisted, err := stores.Registrations.CountByStatus(context.Background(), "ev1", domain.RegistrationWaitlisted)
		require.NoError(t, err)
		assert.EqualValues(t, 7, waitlisted)
	})
}

func TestSubmitDuplicateEmail(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)
	openEvent(t, stores, "ev2", nil)

	first := submit(t, l, "ev1", "amina@example.org")

	_, err := l.Submit(ctx, SubmitInput{EventID: "ev1", Email: "AMINA@example.org"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateRegistration))

	// Same email on a different event is fine.
	submit(t, l, "ev2", "amina@example.org")

	// Cancelling releases the email for re-registration.
	require.NoError(t, l.SoftCancel(ctx, superAdmin(), first.ID))
	submit(t, l, "ev1", "amina@example.org")

	// Empty emails never collide.
	submit(t, l, "ev1", "")
	submit(t, l, "ev1", "")
}

func TestChangeStatus(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", func(ev *domain.Event) {
		ev.Registration.MaxAttendees = intp(1)
		ev.Registration.WaitlistEnabled = true
	})

	submit(t, l, "ev1", "a@example.org")
	waitlisted := submit(t, l, "ev1", "b@example.org")
	require.Equal(t, domain.RegistrationWaitlisted, waitlisted.Status)

	// Promotion is an admin override; capacity is not re-checked.
	promoted, err := l.ChangeStatus(ctx, superAdmin(), waitlisted.ID, domain.RegistrationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationConfirmed, promoted.Status)
	assert.False(t, promoted.IsWaitlisted)

	active, err := l.CountActive(ctx, "ev1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)

	_, err = l.ChangeStatus(ctx, superAdmin(), promoted.ID, "approved")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))
}

func TestBulkChangeStatus(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)
	openEvent(t, stores, "ev2", nil)

	mine := submit(t, l, "ev1", "a@example.org")
	other := submit(t, l, "ev2", "b@example.org")

	t.Run("empty ids rejected", func(t *testing.T) {
		_, err := l.BulkChangeStatus(ctx, superAdmin(), nil, domain.RegistrationConfirmed)
		require.Error(t, err)
		appErr, _ := apperrors.IsAppError(err)
		assert.Equal(t, "Please provide registration IDs", appErr.Message)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := l.BulkChangeStatus(ctx, superAdmin(), []string{mine.ID}, "approved")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))
	})

	t.Run("out-of-scope ids silently dropped", func(t *testing.T) {
		limited := eventAdmin("ev1")
		modified, err := l.BulkChangeStatus(ctx, limited,
			[]string{mine.ID, other.ID, "missing"}, domain.RegistrationCancelled)
		require.NoError(t, err)
		assert.EqualValues(t, 1, modified)

		kept, err := stores.Registrations.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationConfirmed, kept.Status)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)
	reg := submit(t, l, "ev1", "a@example.org")

	notes := "called to confirm"
	status := domain.RegistrationPending
	data := domain.NewFormData()
	data.Set("shirt", "L")

	updated, err := l.Update(ctx, superAdmin(), reg.ID, UpdateInput{
		Notes:  &notes,
		Data:   &data,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "called to confirm", updated.Notes)
	assert.Equal(t, domain.RegistrationPending, updated.Status)
	v, ok := updated.Data.Get("shirt")
	require.True(t, ok)
	assert.Equal(t, "L", v)
}

func TestPermanentDeleteRequiresGrant(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)
	reg := submit(t, l, "ev1", "a@example.org")

	limited := eventAdmin("ev1")
	err := l.PermanentDelete(ctx, limited, reg.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	limited.Permissions.CanDeleteRegistrations = true
	require.NoError(t, l.PermanentDelete(ctx, limited, reg.ID))

	_, err = l.GetByID(ctx, superAdmin(), reg.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistrationNotFound))
}

func TestListScope(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	openEvent(t, stores, "ev1", nil)
	openEvent(t, stores, "ev2", nil)
	submit(t, l, "ev1", "a@example.org")
	submit(t, l, "ev2", "b@example.org")

	limited := eventAdmin("ev1")

	regs, total, err := l.List(ctx, limited, ListParams{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "ev1", regs[0].EventID)

	// An explicit out-of-scope event filter is rejected, not narrowed.
	_, _, err = l.List(ctx, limited, ListParams{EventID: "ev2"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	all, total, err := l.List(ctx, superAdmin(), ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestStats(t *testing.T) {
	t.Parallel()
	l, stores := newLedger(t)
	ctx := context.Background()
	busy := openEvent(t, stores, "ev1", nil)
	openEvent(t, stores, "ev2", nil)

	submit(t, l, "ev1", "a@example.org")
	submit(t, l, "ev1", "b@example.org")
	cancelled := submit(t, l, "ev1", "c@example.org")
	require.NoError(t, l.SoftCancel(ctx, superAdmin(), cancelled.ID))
	submit(t, l, "ev2", "d@example.org")

	stats, err := l.Stats(ctx, superAdmin())
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)
	assert.EqualValues(t, 3, stats.Confirmed)
	assert.EqualValues(t, 1, stats.Cancelled)
	require.NotEmpty(t, stats.TopEvents)
	assert.Equal(t, "ev1", stats.TopEvents[0].EventID)
	assert.Equal(t, busy.Title, stats.TopEvents[0].EventTitle)
	// Cancelled registrations do not count toward the ranking.
	assert.EqualValues(t, 2, stats.TopEvents[0].Count)

	scoped, err := l.Stats(ctx, eventAdmin("ev2"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, scoped.Total)
	require.Len(t, scoped.TopEvents, 1)
	assert.Equal(t, "ev2", scoped.TopEvents[0].EventID)
}

func TestNewConfirmationNumber(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewConfirmationNumber()
		assert.Regexp(t, `^REG-[0-9A-Z]+-[0-9A-Z]{6}$`, n)
		assert.False(t, seen[n], "collision at %s", n)
		seen[n] = true
	}
}
