package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

func intp(n int) *int { return &n }

func TestValidateFieldDefinitions(t *testing.T) {
	t.Parallel()

	t.Run("defaults order to index", func(t *testing.T) {
		t.Parallel()
		fields, err := ValidateFieldDefinitions([]domain.FieldDefinition{
			{Name: "Full Name", Type: domain.FieldText},
			{Name: "Shirt Size", Type: domain.FieldSelect, Options: []string{"S", "M", "L"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, *fields[0].Order)
		assert.Equal(t, 1, *fields[1].Order)
	})

	t.Run("explicit order survives", func(t *testing.T) {
		t.Parallel()
		fields, err := ValidateFieldDefinitions([]domain.FieldDefinition{
			{Name: "a", Type: domain.FieldText, Order: intp(5)},
			{Name: "b", Type: domain.FieldText},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, *fields[0].Order)
		assert.Equal(t, 1, *fields[1].Order)
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		t.Parallel()
		in := []domain.FieldDefinition{
			{Name: "a"},
			{Name: "b", Type: domain.FieldRadio, Options: []string{"x", "y"}},
			{Name: "c", Order: intp(9)},
		}
		once, err := ValidateFieldDefinitions(in)
		require.NoError(t, err)
		twice, err := ValidateFieldDefinitions(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ValidateFieldDefinitions([]domain.FieldDefinition{{Name: "   "}})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})

	t.Run("duplicate name case-insensitive", func(t *testing.T) {
		t.Parallel()
		_, err := ValidateFieldDefinitions([]domain.FieldDefinition{
			{Name: "Email"},
			{Name: "email"},
		})
		require.Error(t, err)
	})

	t.Run("choice field without options rejected", func(t *testing.T) {
		t.Parallel()
		for _, ft := range []domain.FieldType{domain.FieldSelect, domain.FieldRadio, domain.FieldCheckbox} {
			_, err := ValidateFieldDefinitions([]domain.FieldDefinition{
				{Name: "pick", Type: ft},
			})
			assert.Error(t, err, "type %s", ft)
		}
	})

	t.Run("blank option rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ValidateFieldDefinitions([]domain.FieldDefinition{
			{Name: "pick", Type: domain.FieldSelect, Options: []string{"a", "  "}},
		})
		assert.Error(t, err)
	})

	t.Run("empty type defaults to text", func(t *testing.T) {
		t.Parallel()
		fields, err := ValidateFieldDefinitions([]domain.FieldDefinition{{Name: "note"}})
		require.NoError(t, err)
		assert.Equal(t, domain.FieldText, fields[0].Type)
	})
}

func openEvent(mutate func(*domain.Event)) *domain.Event {
	ev := &domain.Event{
		Status: domain.EventPublished,
		Registration: domain.RegistrationSettings{
			IsRequired: true,
			IsOpen:     true,
		},
	}
	if mutate != nil {
		mutate(ev)
	}
	return ev
}

func TestIsRegistrationOpen(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		ev   *domain.Event
		want bool
	}{
		{"open event", openEvent(nil), true},
		{"registration not required", openEvent(func(ev *domain.Event) {
			ev.Registration.IsRequired = false
		}), false},
		{"explicitly closed", openEvent(func(ev *domain.Event) {
			ev.Registration.IsOpen = false
		}), false},
		{"deadline passed", openEvent(func(ev *domain.Event) {
			ev.Registration.RegistrationDeadline = &past
		}), false},
		{"deadline ahead", openEvent(func(ev *domain.Event) {
			ev.Registration.RegistrationDeadline = &future
		}), true},
		{"full without waitlist", openEvent(func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(2)
			ev.Registration.CurrentAttendees = 2
		}), false},
		{"full with waitlist", openEvent(func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(2)
			ev.Registration.CurrentAttendees = 2
			ev.Registration.WaitlistEnabled = true
		}), true},
		{"under capacity", openEvent(func(ev *domain.Event) {
			ev.Registration.MaxAttendees = intp(10)
			ev.Registration.CurrentAttendees = 3
		}), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsRegistrationOpen(tc.ev, now))
		})
	}
}

func TestSpotsRemaining(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SpotsRemaining(openEvent(nil)))

	ev := openEvent(func(ev *domain.Event) {
		ev.Registration.MaxAttendees = intp(10)
		ev.Registration.CurrentAttendees = 4
	})
	require.NotNil(t, SpotsRemaining(ev))
	assert.Equal(t, 6, *SpotsRemaining(ev))

	over := openEvent(func(ev *domain.Event) {
		ev.Registration.MaxAttendees = intp(2)
		ev.Registration.CurrentAttendees = 5
	})
	assert.Equal(t, 0, *SpotsRemaining(over))
}

func TestValidateSubmission(t *testing.T) {
	t.Parallel()

	fields := []domain.FieldDefinition{
		{Name: "name", Type: domain.FieldText, Required: true},
		{Name: "email", Type: domain.FieldEmail},
		{Name: "age", Type: domain.FieldNumber},
		{Name: "size", Type: domain.FieldSelect, Options: []string{"S", "M", "L"}},
		{Name: "days", Type: domain.FieldCheckbox, Options: []string{"Sat", "Sun"}},
		{Name: "dob", Type: domain.FieldDate},
	}

	data := func(pairs ...any) domain.FormData {
		d := domain.NewFormData()
		for i := 0; i+1 < len(pairs); i += 2 {
			d.Set(pairs[i].(string), pairs[i+1])
		}
		return d
	}

	tests := []struct {
		name    string
		data    domain.FormData
		wantErr bool
	}{
		{"valid full submission", data(
			"name", "Amina", "email", "amina@example.org", "age", 33.0,
			"size", "M", "days", []any{"Sat"}, "dob", "1993-02-14",
		), false},
		{"missing required", data("email", "a@b.co"), true},
		{"blank required", data("name", "  "), true},
		{"bad email", data("name", "x", "email", "not-an-email"), true},
		{"numeric string accepted", data("name", "x", "age", "41"), false},
		{"non-numeric rejected", data("name", "x", "age", "forty"), true},
		{"out-of-options select", data("name", "x", "size", "XXL"), true},
		{"checkbox bool accepted", data("name", "x", "days", true), false},
		{"checkbox subset accepted", data("name", "x", "days", []any{"Sat", "Sun"}), false},
		{"checkbox outside options", data("name", "x", "days", []any{"Mon"}), true},
		{"bad date", data("name", "x", "dob", "14th of Feb"), true},
		{"unknown keys pass through", data("name", "x", "legacyField", "anything"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSubmission(fields, tc.data)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
