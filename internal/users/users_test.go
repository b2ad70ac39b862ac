package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository/memory"
)

func init() {
	_ = logger.Init("error", "json")
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewUserStore(), nil)
}

func actorFor(u *domain.User) *access.Principal {
	return access.FromUser(u)
}

func TestCreate(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, nil, CreateInput{
		Email:    " Admin@Example.ORG ",
		Password: "s3cret-pass",
		Name:     "Admin One",
	})
	require.NoError(t, err)

	assert.Equal(t, "admin@example.org", u.Email)
	assert.Equal(t, domain.RoleEventAdmin, u.Role)
	assert.True(t, u.IsActive)
	assert.NotNil(t, u.AssignedEvents)
	assert.Empty(t, u.AssignedEvents)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Password: "p", Name: "n"},
		{Email: "a@b.co", Name: "n"},
		{Email: "a@b.co", Password: "p", Name: "  "},
	} {
		_, err := svc.Create(ctx, nil, in)
		require.Error(t, err)
		appErr, _ := apperrors.IsAppError(err)
		assert.Equal(t, "Email, password, and name are required", appErr.Message)
	}

	_, err := svc.Create(ctx, nil, CreateInput{
		Email: "a@b.co", Password: "p", Name: "n", Role: "owner",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, CreateInput{Email: "dup@example.org", Password: "p1", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, nil, CreateInput{Email: "DUP@example.org", Password: "p2", Name: "Second"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateEmail))
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, nil, CreateInput{Email: "a@example.org", Password: "old-pass", Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, nil, CreateInput{Email: "taken@example.org", Password: "p", Name: "B"})
	require.NoError(t, err)

	t.Run("email collision rejected", func(t *testing.T) {
		email := "taken@example.org"
		_, err := svc.Update(ctx, nil, u.ID, UpdateInput{Email: &email})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateEmail))
	})

	t.Run("password re-hashed only when set", func(t *testing.T) {
		empty := ""
		same, err := svc.Update(ctx, nil, u.ID, UpdateInput{Password: &empty})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(same.PasswordHash), []byte("old-pass")))

		next := "new-pass"
		changed, err := svc.Update(ctx, nil, u.ID, UpdateInput{Password: &next})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(changed.PasswordHash), []byte("new-pass")))
	})

	t.Run("role and assignments", func(t *testing.T) {
		role := domain.RoleSuperAdmin
		updated, err := svc.Update(ctx, nil, u.ID, UpdateInput{
			Role:           &role,
			AssignedEvents: []string{"ev1", "ev2"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSuperAdmin, updated.Role)
		assert.Equal(t, []string{"ev1", "ev2"}, updated.AssignedEvents)
	})
}

func TestSelfProtection(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	self, err := svc.Create(ctx, nil, CreateInput{
		Email: "self@example.org", Password: "p", Name: "Self",
		Role: domain.RoleSuperAdmin,
	})
	require.NoError(t, err)
	other, err := svc.Create(ctx, nil, CreateInput{
		Email: "other@example.org", Password: "p", Name: "Other",
	})
	require.NoError(t, err)

	actor := actorFor(self)

	err = svc.Deactivate(ctx, actor, self.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSelfDelete))

	err = svc.PermanentDelete(ctx, actor, self.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSelfDelete))

	require.NoError(t, svc.Deactivate(ctx, actor, other.ID))
	got, err := svc.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.PermanentDelete(ctx, actor, other.ID))
	_, err = svc.GetByID(ctx, other.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, nil, CreateInput{
		Email: "login@example.org", Password: "correct-horse", Name: "Login",
	})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "  LOGIN@example.org ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "login@example.org", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))

	_, err = svc.Authenticate(ctx, "ghost@example.org", "correct-horse")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))

	inactive := false
	_, err = svc.Update(ctx, nil, u.ID, UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "login@example.org", "correct-horse")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
}
