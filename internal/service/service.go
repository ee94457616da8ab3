package service

import (
	"context"

	"eventhub/internal/logger"
	"eventhub/internal/messaging"
	"eventhub/internal/metrics"
	"eventhub/internal/repository"
)

type Services struct {
	Events     *EventService
	Categories *CategoryService
	Bookings   *BookingService
}

// NewServices wires the services. index may be nil when search is disabled.
func NewServices(repos *repository.Repositories, index EventIndex, bus messaging.Bus, m *metrics.Metrics, catalog Catalog) *Services {
	return &Services{
		Events:     NewEventService(repos.Events, index, bus, catalog),
		Categories: NewCategoryService(repos.Categories),
		Bookings:   NewBookingService(repos.Bookings, repos.Events, bus, m),
	}
}

// publish sends a fact to the bus. Failures are logged and never fail the caller.
func publish(ctx context.Context, bus messaging.Bus, subject string, payload any) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, subject, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
