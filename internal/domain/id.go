package domain

import "github.com/google/uuid"

// NewID returns a time-ordered entity identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
