package domain

import "time"

// Role is the fixed administrative role set. There is no hierarchy beyond
// super_admin bypassing every scope and permission check.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleEventAdmin Role = "event_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleEventAdmin
}

// Permissions are the boolean delete grants consulted for event_admin only.
type Permissions struct {
	CanDeleteEvents        bool `bson:"canDeleteEvents" json:"canDeleteEvents"`
	CanDeleteRegistrations bool `bson:"canDeleteRegistrations" json:"canDeleteRegistrations"`
}

// User is an administrative account. Deactivation is soft: isActive=false
// blocks authentication while preserving history. AssignedEvents is an access
// grant, not ownership, and is meaningful only for event_admin.
type User struct {
	ID             string      `bson:"_id" json:"id"`
	Email          string      `bson:"email" json:"email"`
	PasswordHash   string      `bson:"password" json:"-"`
	Name           string      `bson:"name" json:"name"`
	Role           Role        `bson:"role" json:"role"`
	AssignedEvents []string    `bson:"assignedEvents" json:"assignedEvents"`
	Permissions    Permissions `bson:"permissions" json:"permissions"`
	IsActive       bool        `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time   `bson:"updatedAt" json:"updatedAt"`
}
