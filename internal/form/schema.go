// Package form validates and normalizes dynamic registration form
// definitions and the values submitted against them, and derives whether an
// event is currently accepting registrations. This derivation is the public
// admission gate, a different check from the admin access policy.
package form

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// ValidateFieldDefinitions checks and normalizes an event's field list.
// Names must be non-blank and unique (case-insensitive); choice fields need a
// non-empty options list of non-blank strings. Order defaults to the array
// index only when unset; an explicit order survives, so drag-reorder
// positions persist. Applying the function to its own output is idempotent.
func ValidateFieldDefinitions(fields []domain.FieldDefinition) ([]domain.FieldDefinition, error) {
	out := make([]domain.FieldDefinition, len(fields))
	seen := make(map[string]struct{}, len(fields))
	var fieldErrs []apperrors.FieldError

	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field: fmt.Sprintf("fields[%d].name", i), Code: "required",
				Message: "field name is required",
			})
		}

		lower := strings.ToLower(f.Name)
		if _, dup := seen[lower]; dup && f.Name != "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field: fmt.Sprintf("fields[%d].name", i), Code: "duplicate",
				Message: fmt.Sprintf("field name %q is already used", f.Name),
			})
		}
		seen[lower] = struct{}{}

		if f.Type == "" {
			f.Type = domain.FieldText
		}
		if !f.Type.Valid() {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field: fmt.Sprintf("fields[%d].type", i), Code: "invalid",
				Message: fmt.Sprintf("unknown field type %q", f.Type),
			})
		}

		if f.Type.HasOptions() {
			options := make([]string, 0, len(f.Options))
			blank := false
			for _, opt := range f.Options {
				opt = strings.TrimSpace(opt)
				if opt == "" {
					blank = true
					continue
				}
				options = append(options, opt)
			}
			if len(options) == 0 || blank {
				fieldErrs = append(fieldErrs, apperrors.FieldError{
					Field: fmt.Sprintf("fields[%d].options", i), Code: "required",
					Message: fmt.Sprintf("%s fields need at least one non-blank option", f.Type),
				})
			}
			f.Options = options
		}

		if f.Order == nil {
			idx := i
			f.Order = &idx
		}
		out[i] = f
	}

	if len(fieldErrs) > 0 {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Invalid registration field definitions").WithFieldErrors(fieldErrs)
	}
	return out, nil
}

// IsRegistrationOpen derives the public admission gate for an event at the
// given instant. Capacity closes the gate only when the waitlist is disabled;
// callers wanting live accuracy refresh CurrentAttendees from the ledger
// before asking.
func IsRegistrationOpen(ev *domain.Event, now time.Time) bool {
	reg := ev.Registration
	if !reg.IsRequired {
		return false
	}
	if !reg.IsOpen {
		return false
	}
	if reg.RegistrationDeadline != nil && now.After(*reg.RegistrationDeadline) {
		return false
	}
	if reg.MaxAttendees != nil && reg.CurrentAttendees >= *reg.MaxAttendees && !reg.WaitlistEnabled {
		return false
	}
	return true
}

// SpotsRemaining returns the open capacity, or nil when unlimited.
func SpotsRemaining(ev *domain.Event) *int {
	if ev.Registration.MaxAttendees == nil {
		return nil
	}
	n := *ev.Registration.MaxAttendees - ev.Registration.CurrentAttendees
	if n < 0 {
		n = 0
	}
	return &n
}

// ValidateSubmission checks submitted values against the event's field
// definitions: required fields must be present and non-blank, typed fields
// must parse, and choice fields must stay within their options. Keys without
// a matching definition pass through untouched; legacy forms submit extras.
func ValidateSubmission(fields []domain.FieldDefinition, data domain.FormData) error {
	var fieldErrs []apperrors.FieldError

	for _, f := range fields {
		value, present := data.Get(f.Name)
		if !present || isBlank(value) {
			if f.Required {
				fieldErrs = append(fieldErrs, apperrors.FieldError{
					Field: f.Name, Code: "required",
					Message: fmt.Sprintf("%s is required", f.Name),
				})
			}
			continue
		}
		if msg := checkValue(f, value); msg != "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field: f.Name, Code: "invalid", Message: msg,
			})
		}
	}

	if len(fieldErrs) > 0 {
		return apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Registration data failed validation").WithFieldErrors(fieldErrs)
	}
	return nil
}

func checkValue(f domain.FieldDefinition, value any) string {
	switch f.Type {
	case domain.FieldEmail:
		s, ok := value.(string)
		if !ok {
			return "must be an email address"
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return fmt.Sprintf("%q is not a valid email address", s)
		}
	case domain.FieldNumber:
		switch v := value.(type) {
		case float64:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Sprintf("%q is not a number", v)
			}
		default:
			return "must be a number"
		}
	case domain.FieldDate:
		s, ok := value.(string)
		if !ok {
			return "must be a date"
		}
		if !parseableDate(s) {
			return fmt.Sprintf("%q is not a valid date", s)
		}
	case domain.FieldSelect, domain.FieldRadio:
		s, ok := value.(string)
		if !ok || !contains(f.Options, s) {
			return fmt.Sprintf("value must be one of: %s", strings.Join(f.Options, ", "))
		}
	case domain.FieldCheckbox:
		switch v := value.(type) {
		case bool:
		case string:
			if !contains(f.Options, v) {
				return fmt.Sprintf("value must be one of: %s", strings.Join(f.Options, ", "))
			}
		case []any:
			for _, e := range v {
				s, ok := e.(string)
				if !ok || !contains(f.Options, s) {
					return fmt.Sprintf("values must be within: %s", strings.Join(f.Options, ", "))
				}
			}
		default:
			return "must be a boolean or a list of selected options"
		}
	}
	return ""
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

func contains(options []string, v string) bool {
	for _, opt := range options {
		if opt == v {
			return true
		}
	}
	return false
}

func parseableDate(s string) bool {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
