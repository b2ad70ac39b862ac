// Package domain defines the core entities of the events console.
package domain

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
	EventArchived  EventStatus = "archived"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled, EventCompleted, EventArchived:
		return true
	}
	return false
}

// EventType describes how an event is attended.
type EventType string

const (
	EventInPerson EventType = "in-person"
	EventVirtual  EventType = "virtual"
	EventHybrid   EventType = "hybrid"
)

// EventCategory classifies an event for public browsing.
type EventCategory string

const (
	CategoryCommunityService EventCategory = "community-service"
	CategoryEducational      EventCategory = "educational"
	CategoryReligious        EventCategory = "religious"
	CategoryCultural         EventCategory = "cultural"
	CategoryYouth            EventCategory = "youth"
	CategoryInterfaith       EventCategory = "interfaith"
	CategoryFundraising      EventCategory = "fundraising"
	CategoryHealthWellness   EventCategory = "health-wellness"
	CategorySocial           EventCategory = "social"
	CategoryWorkshop         EventCategory = "workshop"
	CategoryConference       EventCategory = "conference"
	CategoryMeeting          EventCategory = "meeting"
	CategoryOther            EventCategory = "other"
)

// Frequency is the recurrence cadence of a recurring event.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
	FreqYearly   Frequency = "yearly"
	FreqCustom   Frequency = "custom"
)

// MonthlyType selects between "same date each month" and
// "same weekday ordinal each month" (e.g. second Tuesday).
type MonthlyType string

const (
	MonthlyByDate MonthlyType = "date"
	MonthlyByDay  MonthlyType = "day"
)

// Event is a single catalog entry. Soft deletion archives the event
// (status=archived, isArchived=true, isPublic=false) without removing history.
type Event struct {
	ID               string        `bson:"_id" json:"id"`
	Title            string        `bson:"title" json:"title"`
	Slug             string        `bson:"slug" json:"slug"`
	Description      string        `bson:"description" json:"description"`
	ShortDescription string        `bson:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	Category         EventCategory `bson:"category" json:"category"`
	EventType        EventType     `bson:"eventType" json:"eventType"`
	Status           EventStatus   `bson:"status" json:"status"`

	EventDate time.Time `bson:"eventDate" json:"eventDate"`
	StartTime string    `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   string    `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Timezone  string    `bson:"timezone,omitempty" json:"timezone,omitempty"`

	Location     Location             `bson:"location,omitempty" json:"location"`
	Registration RegistrationSettings `bson:"registration" json:"registration"`
	Recurring    Recurrence           `bson:"recurring" json:"recurring"`

	Tags       []string  `bson:"tags,omitempty" json:"tags"`
	Featured   bool      `bson:"featured" json:"featured"`
	Analytics  Analytics `bson:"analytics" json:"analytics"`
	IsPublic   bool      `bson:"isPublic" json:"isPublic"`
	IsArchived bool      `bson:"isArchived" json:"isArchived"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Location is free-form venue information.
type Location struct {
	Venue          string  `bson:"venue,omitempty" json:"venue,omitempty"`
	Street         string  `bson:"street,omitempty" json:"street,omitempty"`
	City           string  `bson:"city,omitempty" json:"city,omitempty"`
	State          string  `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode        string  `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country        string  `bson:"country,omitempty" json:"country,omitempty"`
	Latitude       float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude      float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	VirtualLink    string  `bson:"virtualLink,omitempty" json:"virtualLink,omitempty"`
	AdditionalInfo string  `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
}

// RegistrationSettings configures attendee signup for one event.
// CurrentAttendees is a cached projection of the live active-registration
// count; the ledger's CountActive is authoritative.
type RegistrationSettings struct {
	IsRequired           bool              `bson:"isRequired" json:"isRequired"`
	MaxAttendees         *int              `bson:"maxAttendees,omitempty" json:"maxAttendees,omitempty"`
	CurrentAttendees     int               `bson:"currentAttendees" json:"currentAttendees"`
	RegistrationDeadline *time.Time        `bson:"registrationDeadline,omitempty" json:"registrationDeadline,omitempty"`
	Fee                  Fee               `bson:"fee" json:"fee"`
	Fields               []FieldDefinition `bson:"fields,omitempty" json:"fields"`
	IsOpen               bool              `bson:"isOpen" json:"isOpen"`
	WaitlistEnabled      bool              `bson:"waitlistEnabled" json:"waitlistEnabled"`
}

// Fee is the optional registration charge.
type Fee struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// FieldType enumerates the supported dynamic form field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldDate     FieldType = "date"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldNumber,
		FieldSelect, FieldCheckbox, FieldRadio, FieldDate:
		return true
	}
	return false
}

// HasOptions reports whether the field type carries an options list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}

// FieldDefinition is one admin-defined registration form field.
// Order is nil until an explicit ordinal is assigned; persistence defaults it
// to the array index, but an explicit value is kept so drag-reordering sticks.
type FieldDefinition struct {
	Name        string    `bson:"name" json:"name"`
	Type        FieldType `bson:"type" json:"type"`
	Required    bool      `bson:"required" json:"required"`
	Placeholder string    `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	HelpText    string    `bson:"helpText,omitempty" json:"helpText,omitempty"`
	Options     []string  `bson:"options,omitempty" json:"options,omitempty"`
	Order       *int      `bson:"order,omitempty" json:"order,omitempty"`
}

// Recurrence configures repeating events. Replaced wholesale on update,
// never deep-merged.
type Recurrence struct {
	IsRecurring bool        `bson:"isRecurring" json:"isRecurring"`
	Frequency   Frequency   `bson:"frequency,omitempty" json:"frequency,omitempty"`
	Interval    int         `bson:"interval,omitempty" json:"interval,omitempty"`
	EndDate     *time.Time  `bson:"endDate,omitempty" json:"endDate,omitempty"`
	DaysOfWeek  []int       `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	MonthlyType MonthlyType `bson:"monthlyType,omitempty" json:"monthlyType,omitempty"`
	CustomDates []time.Time `bson:"customDates,omitempty" json:"customDates,omitempty"`
}

// Analytics carries per-event counters incremented outside the read contract.
type Analytics struct {
	Views  int64 `bson:"views" json:"views"`
	Shares int64 `bson:"shares" json:"shares"`
}
