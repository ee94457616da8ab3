package models

import (
	"time"

	"github.com/google/uuid"
)

// UncategorizedName is shown for events whose category row no longer exists.
const UncategorizedName = "Uncategorized"

// Category represents an event category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRef is the category as embedded in an event
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Event represents a catalog event
type Event struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Category    CategoryRef `json:"category"`
	Date        time.Time   `json:"date" db:"date"`
	Venue       string      `json:"venue" db:"venue"`
	Price       float64     `json:"price" db:"price"`
	Images      []string    `json:"images" db:"images"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// EventDraft holds the mutable fields of an event for create and full-replace update
type EventDraft struct {
	Name        string
	Description string
	CategoryID  uuid.UUID
	Date        time.Time
	Venue       string
	Price       float64
	Images      []string
}

// EventSummary is the event as embedded in a booking. Nil when the event was deleted.
type EventSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Venue  string    `json:"venue"`
	Price  float64   `json:"price"`
	Images []string  `json:"images,omitempty"`
}

// UserSummary is the user as embedded in admin booking listings
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Booking represents one user's reservation of one event
type Booking struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	UserID    uuid.UUID     `json:"userId" db:"user_id"`
	EventID   uuid.UUID     `json:"eventId" db:"event_id"`
	BookedAt  time.Time     `json:"bookedAt" db:"booked_at"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
	Event     *EventSummary `json:"event"`
	User      *UserSummary  `json:"user,omitempty"`
}

// Identity is the authenticated caller attached by the auth middleware
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}
