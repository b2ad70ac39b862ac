package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	t.Parallel()

	e := NotFound(CodeEventNotFound, "Event not found")
	assert.Equal(t, "EVENT_NOT_FOUND: Event not found", e.Error())

	wrapped := Wrap(errors.New("boom"), CodeInternal, "storage failure", http.StatusInternalServerError)
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestUnwrapSupportsErrorsIs(t *testing.T) {
	t.Parallel()

	base := errors.New("dial timeout")
	e := Wrap(base, CodeInternal, "storage failure", http.StatusInternalServerError)
	assert.True(t, errors.Is(e, base))
}

func TestIsAppError(t *testing.T) {
	t.Parallel()

	e := Conflict(CodeDuplicateRegistration, "already registered")
	got, ok := IsAppError(fmt.Errorf("submit: %w", e))
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateRegistration, got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)

	_, ok = IsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	e := BadRequest(CodeEventNotOpen, "Registration is not open for this event")
	assert.True(t, HasCode(e, CodeEventNotOpen))
	assert.False(t, HasCode(e, CodeValidationFailed))
	assert.False(t, HasCode(errors.New("plain"), CodeEventNotOpen))
}

func TestConstructorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("C", "m"), http.StatusBadRequest},
		{Unauthorized("C", "m"), http.StatusUnauthorized},
		{Forbidden("C", "m"), http.StatusForbidden},
		{NotFound("C", "m"), http.StatusNotFound},
		{Conflict("C", "m"), http.StatusConflict},
		{Internal("C", "m"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.HTTPStatus)
	}
}
