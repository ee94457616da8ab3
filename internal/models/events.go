package models

import (
	"time"

	"github.com/google/uuid"
)

// Bus subjects
const (
	SubjectBookingCreated   = "booking.created"
	SubjectBookingCancelled = "booking.cancelled"
	SubjectEventCreated     = "event.created"
	SubjectEventUpdated     = "event.updated"
	SubjectEventDeleted     = "event.deleted"
)

// AuditSubjects are consumed by the audit consumer
var AuditSubjects = []string{
	SubjectBookingCreated,
	SubjectBookingCancelled,
	SubjectEventCreated,
	SubjectEventUpdated,
	SubjectEventDeleted,
}

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventChangedEvent is published on event create and update with the full record
type EventChangedEvent struct {
	Event     Event     `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDeletedEvent is published when an event is removed from the catalog
type EventDeletedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}
