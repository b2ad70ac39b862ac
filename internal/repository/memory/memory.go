// Package memory implements the repository contracts with in-process maps.
// It backs the test suite and local seeding, and mirrors the uniqueness
// guarantees the MongoDB indexes provide (slug, user email, active
// event+email pairs).
package memory

import (
	"fmt"
	"sort"
	"strings"

	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
)

// Stores bundles one in-memory instance of every repository.
type Stores struct {
	Events        *EventStore
	Registrations *RegistrationStore
	Users         *UserStore
	Activity      *ActivityStore
}

// NewStores creates an empty store bundle.
func NewStores() *Stores {
	return &Stores{
		Events:        NewEventStore(),
		Registrations: NewRegistrationStore(),
		Users:         NewUserStore(),
		Activity:      NewActivityStore(),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortSlice[T any](items []T, less func(a, b T) bool, descending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
