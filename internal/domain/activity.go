package domain

import "time"

// Action is the audited operation kind.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// ResourceType names the entity an activity entry refers to.
type ResourceType string

const (
	ResourceEvent        ResourceType = "event"
	ResourceRegistration ResourceType = "registration"
	ResourceUser         ResourceType = "user"
)

// ActivityEntry is one append-only audit record. The actor fields are a
// snapshot, not a live reference, so history survives actor mutation or
// deletion. Entries are never mutated or deleted.
type ActivityEntry struct {
	ID           string       `bson:"_id" json:"id"`
	UserID       string       `bson:"user" json:"user"`
	UserName     string       `bson:"userName" json:"userName"`
	UserEmail    string       `bson:"userEmail" json:"userEmail"`
	Action       Action       `bson:"action" json:"action"`
	ResourceType ResourceType `bson:"resourceType" json:"resourceType"`
	ResourceID   string       `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	ResourceName string       `bson:"resourceName,omitempty" json:"resourceName,omitempty"`
	Details      string       `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress    string       `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
}
