package domain

import "time"

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationConfirmed  RegistrationStatus = "confirmed"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationConfirmed, RegistrationWaitlisted, RegistrationCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses counted against event capacity.
var ActiveStatuses = []RegistrationStatus{RegistrationConfirmed, RegistrationPending}

// Registration is one attendee signup against a single event. EventID is
// immutable after creation. The (event, email) pair is unique only while the
// email is non-empty and the registration is not cancelled.
type Registration struct {
	ID                 string             `bson:"_id" json:"id"`
	EventID            string             `bson:"event" json:"event"`
	Data               FormData           `bson:"registrationData" json:"registrationData"`
	Status             RegistrationStatus `bson:"status" json:"status"`
	Email              string             `bson:"email,omitempty" json:"email,omitempty"`
	ConfirmationNumber string             `bson:"confirmationNumber" json:"confirmationNumber"`
	RegisteredAt       time.Time          `bson:"registeredAt" json:"registeredAt"`
	IsWaitlisted       bool               `bson:"isWaitlisted" json:"isWaitlisted"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Waiver             *Waiver            `bson:"waiver,omitempty" json:"waiver,omitempty"`
	Metadata           SubmissionMetadata `bson:"metadata" json:"metadata"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the registration counts against capacity.
func (r *Registration) Active() bool {
	return r.Status == RegistrationConfirmed || r.Status == RegistrationPending
}

// Waiver records consent collected during submission.
type Waiver struct {
	Acknowledged    bool             `bson:"acknowledged" json:"acknowledged"`
	Acknowledgments []Acknowledgment `bson:"acknowledgments,omitempty" json:"acknowledgments,omitempty"`
	Signature       *Signature       `bson:"signature,omitempty" json:"signature,omitempty"`
}

// Acknowledgment is a single accepted waiver clause.
type Acknowledgment struct {
	Text       string    `bson:"text" json:"text"`
	Accepted   bool      `bson:"accepted" json:"accepted"`
	AcceptedAt time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
}

// SignatureDraw and SignatureType are the supported signature capture modes:
// a drawn image (base64 payload) or a typed name.
const (
	SignatureDraw = "draw"
	SignatureType = "type"
)

// Signature is the waiver signature payload.
type Signature struct {
	Type      string    `bson:"type" json:"type"`
	Value     string    `bson:"value" json:"value"`
	SignedAt  time.Time `bson:"signedAt,omitempty" json:"signedAt,omitempty"`
	IPAddress string    `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

// SubmissionMetadata is client context captured once at submission time.
type SubmissionMetadata struct {
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	IPAddress string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	Referrer  string `bson:"referrer,omitempty" json:"referrer,omitempty"`
}
