package service

import (
	"context"

	"eventhub/internal/models"

	"github.com/google/uuid"
)

// EventStore is the durable event catalog
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter, sort models.EventSort, skip, limit int) ([]models.Event, int, error)
	Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, draft *models.EventDraft) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryStore is the durable category list
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// BookingLedger records bookings and enforces one booking per (user, event)
type BookingLedger interface {
	Create(ctx context.Context, userID, eventID uuid.UUID) (*models.Booking, error)
	DeleteOwned(ctx context.Context, bookingID, userID uuid.UUID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
}

// EventIndex is the full-text search mirror of the catalog
type EventIndex interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) ([]models.Event, int, error)
}
