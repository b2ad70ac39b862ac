package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/repository"
)

// RegistrationStore is the in-memory RegistrationRepository.
type RegistrationStore struct {
	mu   sync.RWMutex
	regs map[string]*domain.Registration
}

// NewRegistrationStore creates an empty registration store.
func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{regs: make(map[string]*domain.Registration)}
}

func cloneRegistration(r *domain.Registration) *domain.Registration {
	out := *r
	out.Data = r.Data.Clone()
	if r.Waiver != nil {
		w := *r.Waiver
		w.Acknowledgments = slices.Clone(r.Waiver.Acknowledgments)
		if r.Waiver.Signature != nil {
			sig := *r.Waiver.Signature
			w.Signature = &sig
		}
		out.Waiver = &w
	}
	return &out
}

func activeEmailConflict(r *domain.Registration, eventID, email string) bool {
	return r.EventID == eventID &&
		r.Email != "" &&
		strings.EqualFold(r.Email, email) &&
		r.Status != domain.RegistrationCancelled
}

// Insert stores a new registration, enforcing the partial (event, email)
// uniqueness the MongoDB index provides: only non-empty emails on
// non-cancelled registrations collide.
func (s *RegistrationStore) Insert(_ context.Context, reg *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.Email != "" {
		for _, existing := range s.regs {
			if activeEmailConflict(existing, reg.EventID, reg.Email) {
				return fmt.Errorf("registration for %s on event %s: %w",
					reg.Email, reg.EventID, apperrors.ErrAlreadyExists)
			}
		}
	}
	s.regs[reg.ID] = cloneRegistration(reg)
	return nil
}

// Update replaces the stored document.
func (s *RegistrationStore) Update(_ context.Context, reg *domain.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[reg.ID]; !ok {
		return notFound("registration", reg.ID)
	}
	s.regs[reg.ID] = cloneRegistration(reg)
	return nil
}

// FindByID returns the registration or ErrNotFound.
func (s *RegistrationStore) FindByID(_ context.Context, id string) (*domain.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.regs[id]
	if !ok {
		return nil, notFound("registration", id)
	}
	return cloneRegistration(reg), nil
}

// Delete removes the registration permanently.
func (s *RegistrationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[id]; !ok {
		return notFound("registration", id)
	}
	delete(s.regs, id)
	return nil
}

// List applies the admin filter with pagination.
func (s *RegistrationStore) List(_ context.Context, f repository.RegistrationFilter) ([]*domain.Registration, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Registration
	for _, reg := range s.regs {
		if !f.Scope.Unrestricted && !f.Scope.Allows(reg.EventID) {
			continue
		}
		if f.EventID != "" && reg.EventID != f.EventID {
			continue
		}
		if f.Status != "" && reg.Status != f.Status {
			continue
		}
		if f.Search != "" &&
			!containsFold(reg.Email, f.Search) &&
			!containsFold(reg.ConfirmationNumber, f.Search) {
			continue
		}
		matched = append(matched, cloneRegistration(reg))
	}

	descending := f.SortOrder != repository.SortAsc
	switch f.SortBy {
	case "email":
		sortSlice(matched, func(a, b *domain.Registration) bool { return a.Email < b.Email }, descending)
	case "status":
		sortSlice(matched, func(a, b *domain.Registration) bool { return a.Status < b.Status }, descending)
	default:
		sortSlice(matched, func(a, b *domain.Registration) bool { return a.RegisteredAt.Before(b.RegisteredAt) }, descending)
	}

	total := int64(len(matched))
	return paginate(matched, f.Page, f.Limit), total, nil
}

// HasActiveByEmail reports whether the event already has a non-cancelled
// registration with the email.
func (s *RegistrationStore) HasActiveByEmail(_ context.Context, eventID, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email == "" {
		return false, nil
	}
	for _, reg := range s.regs {
		if activeEmailConflict(reg, eventID, email) {
			return true, nil
		}
	}
	return false, nil
}

// CountByStatus counts the event's registrations in any of the given statuses.
func (s *RegistrationStore) CountByStatus(_ context.Context, eventID string, statuses ...domain.RegistrationStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, reg := range s.regs {
		if reg.EventID == eventID && slices.Contains(statuses, reg.Status) {
			n++
		}
	}
	return n, nil
}

// BulkSetStatus moves every listed registration to status in one pass and
// returns how many documents changed. IsWaitlisted tracks the status.
func (s *RegistrationStore) BulkSetStatus(_ context.Context, ids []string, status domain.RegistrationStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var modified int64
	for _, id := range ids {
		reg, ok := s.regs[id]
		if !ok || reg.Status == status {
			continue
		}
		reg.Status = status
		reg.IsWaitlisted = status == domain.RegistrationWaitlisted
		reg.UpdatedAt = now
		modified++
	}
	return modified, nil
}

// Stats computes per-status counts within the scope.
func (s *RegistrationStore) Stats(_ context.Context, scope access.Scope) (*repository.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := &repository.StatusCounts{}
	for _, reg := range s.regs {
		if !scope.Unrestricted && !scope.Allows(reg.EventID) {
			continue
		}
		counts.Total++
		switch reg.Status {
		case domain.RegistrationConfirmed:
			counts.Confirmed++
		case domain.RegistrationPending:
			counts.Pending++
		case domain.RegistrationWaitlisted:
			counts.Waitlisted++
		case domain.RegistrationCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

// TopEvents returns the events with the most active (confirmed or pending)
// registrations, busiest first.
func (s *RegistrationStore) TopEvents(_ context.Context, scope access.Scope, limit int) ([]repository.EventCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, reg := range s.regs {
		if !scope.Unrestricted && !scope.Allows(reg.EventID) {
			continue
		}
		if reg.Status != domain.RegistrationConfirmed && reg.Status != domain.RegistrationPending {
			continue
		}
		counts[reg.EventID]++
	}
	out := make([]repository.EventCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, repository.EventCount{EventID: id, Count: n})
	}
	sortSlice(out, func(a, b repository.EventCount) bool {
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.EventID > b.EventID
	}, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
