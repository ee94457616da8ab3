package repository

import (
	"eventhub/internal/database"
)

type Repositories struct {
	Events     *EventRepository
	Categories *CategoryRepository
	Bookings   *BookingRepository
	Users      *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:     NewEventRepository(db),
		Categories: NewCategoryRepository(db),
		Bookings:   NewBookingRepository(db),
		Users:      NewUserRepository(db),
	}
}
