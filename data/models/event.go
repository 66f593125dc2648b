package models

import (
	"database/sql"
	"time"
)

// EventState is the lifecycle state of an event. Every event starts out
// PENDING and is either published or canceled from there.
type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

type Event struct {
	ID                int64        `json:"id" db:"id" readOnly:"true"`
	InitiatorID       int64        `validate:"required" json:"initiatorId" db:"initiator_id"`
	CategoryID        int64        `validate:"required" json:"categoryId" db:"category_id"`
	Title             string       `validate:"required,min=3,max=120" json:"title" db:"title"`
	Annotation        string       `validate:"required,min=20,max=2000" json:"annotation" db:"annotation"`
	Description       string       `validate:"required,min=20,max=7000" json:"description" db:"description"`
	EventDate         time.Time    `validate:"required" json:"eventDate" db:"event_date"`
	CreatedOn         time.Time    `json:"createdOn" db:"created_on" readOnly:"true"`
	PublishedOn       sql.NullTime `json:"publishedOn" db:"published_on"`
	Lat               float64      `json:"lat" db:"lat"`
	Lon               float64      `json:"lon" db:"lon"`
	Paid              bool         `json:"paid" db:"paid"`
	ParticipantLimit  int          `validate:"gte=0" json:"participantLimit" db:"participant_limit"`
	RequestModeration bool         `json:"requestModeration" db:"request_moderation"`
	State             EventState   `validate:"required" json:"state" db:"state"`
}

func (Event) TableName() string {
	return "events"
}

func (e Event) ColumnNames() []string {
	return GetColumnNames(e, true)
}

func (e Event) GetID() int64 {
	return e.ID
}

func (e Event) EmptySlice() interface{} {
	return &[]Event{}
}

// Unlimited reports whether the event has no participant cap. A zero limit
// means any number of requesters can be admitted.
func (e Event) Unlimited() bool {
	return e.ParticipantLimit == 0
}

// Moderated reports whether participation requests need the initiator's
// confirmation. Events without a cap never hold requests for moderation.
func (e Event) Moderated() bool {
	return e.RequestModeration && e.ParticipantLimit != 0
}
