package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// UserStore is the in-memory UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.AssignedEvents = slices.Clone(u.AssignedEvents)
	return &out
}

// Insert stores a new user, enforcing email uniqueness.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user email %s: %w", u.Email, apperrors.ErrAlreadyExists)
		}
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

// Update replaces the stored document.
func (s *UserStore) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	for id, existing := range s.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user email %s: %w", u.Email, apperrors.ErrAlreadyExists)
		}
	}
	s.users[u.ID] = cloneUser(u)
	return nil
}

// FindByID returns the user or ErrNotFound.
func (s *UserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return cloneUser(u), nil
}

// FindByEmail looks the user up case-insensitively.
func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, notFound("user", email)
}

// List returns every user, newest first.
func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sortSlice(out, func(a, b *domain.User) bool { return a.CreatedAt.Before(b.CreatedAt) }, true)
	return out, nil
}

// Delete removes the user permanently.
func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return notFound("user", id)
	}
	delete(s.users, id)
	return nil
}
