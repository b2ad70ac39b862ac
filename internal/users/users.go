// Package users manages administrative accounts. Every operation here is
// super-admin territory; route-level guards enforce that before the service
// runs.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/audit"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/pkg/logger"
	"eventdesk.io/eventdesk/internal/repository"
)

const bcryptCost = 10

// Service is the admin user management service.
type Service struct {
	users repository.UserRepository
	trail audit.Recorder
}

// NewService creates a Service.
func NewService(users repository.UserRepository, trail audit.Recorder) *Service {
	return &Service{users: users, trail: trail}
}

// CreateInput carries the fields accepted on user creation.
type CreateInput struct {
	Email          string              `json:"email"`
	Password       string              `json:"password"`
	Name           string              `json:"name"`
	Role           domain.Role         `json:"role"`
	AssignedEvents []string            `json:"assignedEvents"`
	Permissions    *domain.Permissions `json:"permissions"`
}

// Create adds a new administrative account with a bcrypt-hashed credential.
func (s *Service) Create(ctx context.Context, actor *access.Principal, in CreateInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed,
			"Email, password, and name are required")
	}
	role := in.Role
	if role == "" {
		role = domain.RoleEventAdmin
	}
	if !role.Valid() {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "Invalid role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:             domain.NewID(),
		Email:          email,
		PasswordHash:   string(hash),
		Name:           in.Name,
		Role:           role,
		AssignedEvents: in.AssignedEvents,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if u.AssignedEvents == nil {
		u.AssignedEvents = []string{}
	}
	if in.Permissions != nil {
		u.Permissions = *in.Permissions
	}

	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.BadRequest(apperrors.CodeDuplicateEmail,
				"A user with this email already exists")
		}
		return nil, err
	}

	logger.Info("user created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	s.record(ctx, actor, domain.ActionCreate, u, "Created user: "+u.Name+" ("+u.Email+")")
	return u, nil
}

// UpdateInput carries a partial user update. A non-nil Password re-hashes
// the credential.
type UpdateInput struct {
	Email          *string             `json:"email"`
	Password       *string             `json:"password"`
	Name           *string             `json:"name"`
	Role           *domain.Role        `json:"role"`
	AssignedEvents []string            `json:"assignedEvents"`
	IsActive       *bool               `json:"isActive"`
	Permissions    *domain.Permissions `json:"permissions"`
}

// Update applies a partial edit to an account.
func (s *Service) Update(ctx context.Context, actor *access.Principal, id string, in UpdateInput) (*domain.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != u.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, apperrors.BadRequest(apperrors.CodeDuplicateEmail,
					"A user with this email already exists")
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			u.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "Invalid role")
		}
		u.Role = *in.Role
	}
	if in.AssignedEvents != nil {
		u.AssignedEvents = in.AssignedEvents
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Permissions != nil {
		u.Permissions = *in.Permissions
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.BadRequest(apperrors.CodeDuplicateEmail,
				"A user with this email already exists")
		}
		return nil, err
	}
	s.record(ctx, actor, domain.ActionUpdate, u, "Updated user: "+u.Name+" ("+u.Email+")")
	return u, nil
}

// Deactivate soft-deletes the account: authentication is blocked, history
// is preserved. Actors may not deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, actor *access.Principal, id string) error {
	if actor != nil && actor.UserID == id {
		return apperrors.BadRequest(apperrors.CodeSelfDelete,
			"You cannot delete your own account")
	}
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	logger.Info("user deactivated", zap.String("email", u.Email))
	s.record(ctx, actor, domain.ActionDelete, u, "Deactivated user: "+u.Name+" ("+u.Email+")")
	return nil
}

// PermanentDelete hard-removes the account. Actors may not delete
// themselves.
func (s *Service) PermanentDelete(ctx context.Context, actor *access.Principal, id string) error {
	if actor != nil && actor.UserID == id {
		return apperrors.BadRequest(apperrors.CodeSelfDelete,
			"You cannot delete your own account")
	}
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionDelete, u, "Permanently deleted user: "+u.Name+" ("+u.Email+")")
	return nil
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// GetByID returns one account.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.get(ctx, id)
}

// Authenticate verifies a credential pair and returns the account. Inactive
// accounts fail exactly like bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(apperrors.CodeAuthFailed, "Invalid email or password")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, apperrors.Unauthorized(apperrors.CodeAuthFailed, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(apperrors.CodeAuthFailed, "Invalid email or password")
	}
	return u, nil
}

func (s *Service) get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) record(ctx context.Context, actor *access.Principal, action domain.Action, u *domain.User, details string) {
	if s.trail == nil {
		return
	}
	s.trail.Record(ctx, actor, audit.Entry{
		Action:       action,
		ResourceType: domain.ResourceUser,
		ResourceID:   u.ID,
		ResourceName: u.Name,
		Details:      details,
	})
}
