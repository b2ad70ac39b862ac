// Package access computes which events and registrations a principal may act
// on. It is a pure function layer: no storage, no request state. Every
// admin-attributed read or mutation of an event or registration consults this
// policy; public registration submission does not (its gate is "is the event
// accepting registrations", which lives in the form package).
package access

import (
	"slices"

	"eventdesk.io/eventdesk/internal/domain"
)

// Principal is the authenticated actor context. A nil principal represents an
// unauthenticated caller and matches nothing.
type Principal struct {
	UserID         string
	Name           string
	Email          string
	Role           domain.Role
	AssignedEvents []string
	Permissions    domain.Permissions
}

// FromUser builds a Principal from a stored user record.
func FromUser(u *domain.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		UserID:         u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		AssignedEvents: slices.Clone(u.AssignedEvents),
		Permissions:    u.Permissions,
	}
}

// IsSuperAdmin reports whether the principal bypasses scope and permission
// checks unconditionally.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == domain.RoleSuperAdmin
}

// CanAccessEvent reports whether the principal may view or mutate the event.
func (p *Principal) CanAccessEvent(eventID string) bool {
	if p == nil {
		return false
	}
	if p.Role == domain.RoleSuperAdmin {
		return true
	}
	return slices.Contains(p.AssignedEvents, eventID)
}

// CanDeleteEvents reports whether the principal holds the event hard-delete
// grant. Implied for super_admin, a boolean permission otherwise.
func (p *Principal) CanDeleteEvents() bool {
	if p == nil {
		return false
	}
	return p.Role == domain.RoleSuperAdmin || p.Permissions.CanDeleteEvents
}

// CanDeleteRegistrations reports whether the principal holds the registration
// hard-delete grant.
func (p *Principal) CanDeleteRegistrations() bool {
	if p == nil {
		return false
	}
	return p.Role == domain.RoleSuperAdmin || p.Permissions.CanDeleteRegistrations
}

// Scope describes a principal's event reach: either unrestricted or a
// concrete id set. The zero value matches nothing.
type Scope struct {
	Unrestricted bool
	EventIDs     []string
}

// EventScope evaluates the principal into a scope descriptor.
func (p *Principal) EventScope() Scope {
	if p == nil {
		return Scope{}
	}
	if p.Role == domain.RoleSuperAdmin {
		return Scope{Unrestricted: true}
	}
	return Scope{EventIDs: slices.Clone(p.AssignedEvents)}
}

// Allows reports whether the scope covers the given event.
func (s Scope) Allows(eventID string) bool {
	return s.Unrestricted || slices.Contains(s.EventIDs, eventID)
}
