package models

import "time"

// RequestStatus is the moderation status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request is a user's application to take part in a published event. The pair
// (event, requester) may have at most one request in an active status; the
// history of rejected and canceled requests is kept.
type Request struct {
	ID          int64         `json:"id" db:"id" readOnly:"true"`
	EventID     int64         `validate:"required" json:"event" db:"event_id"`
	RequesterID int64         `validate:"required" json:"requester" db:"requester_id"`
	Status      RequestStatus `validate:"required" json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created" db:"created_at" readOnly:"true"`
}

func (Request) TableName() string {
	return "participation_requests"
}

func (r Request) ColumnNames() []string {
	return GetColumnNames(r, true)
}

func (r Request) GetID() int64 {
	return r.ID
}

func (r Request) EmptySlice() interface{} {
	return &[]Request{}
}

// Active reports whether the request still occupies, or may come to occupy, a
// participant slot.
func (r Request) Active() bool {
	return r.Status == RequestPending || r.Status == RequestConfirmed
}
