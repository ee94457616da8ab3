package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/logger"
	"eventhub/internal/messaging"
	"eventhub/internal/metrics"
	"eventhub/internal/models"

	"github.com/google/uuid"
)

type BookingService struct {
	ledger  BookingLedger
	events  EventStore
	bus     messaging.Bus
	metrics *metrics.Metrics
}

func NewBookingService(ledger BookingLedger, events EventStore, bus messaging.Bus, m *metrics.Metrics) *BookingService {
	return &BookingService{
		ledger:  ledger,
		events:  events,
		bus:     bus,
		metrics: m,
	}
}

// Book бронирует событие для пользователя. Повторное бронирование той же пары
// отклоняет уникальный индекс хранилища, а не предварительная проверка.
func (s *BookingService) Book(ctx context.Context, userID uuid.UUID, rawEventID string) (*models.Booking, error) {
	eventID, err := models.ParseID(rawEventID, models.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.metrics.Booking(metrics.OutcomeNoEvent)
			return nil, models.ErrEventNotFound
		}
		s.metrics.Booking(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	booking, err := s.ledger.Create(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.metrics.Booking(metrics.OutcomeDuplicate)
			return nil, models.ErrAlreadyBooked
		}
		s.metrics.Booking(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.Booking(metrics.OutcomeBooked)
	logger.WithContext(ctx).Info("Booking created", "booking_id", booking.ID, "event_id", eventID)

	publish(ctx, s.bus, models.SubjectBookingCreated, models.BookingCreatedEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		Timestamp: time.Now(),
	})

	return booking, nil
}

// Cancel удаляет бронирование только его владельца; чужое и отсутствующее неразличимы
func (s *BookingService) Cancel(ctx context.Context, userID uuid.UUID, rawBookingID string) error {
	bookingID, err := models.ParseID(rawBookingID, models.ErrInvalidBookingID)
	if err != nil {
		return err
	}

	booking, err := s.ledger.DeleteOwned(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrBookingNotFound
		}
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.metrics.Booking(metrics.OutcomeCancelled)
	logger.WithContext(ctx).Info("Booking cancelled", "booking_id", booking.ID, "event_id", booking.EventID)

	publish(ctx, s.bus, models.SubjectBookingCancelled, models.BookingCancelledEvent{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		Timestamp: time.Now(),
	})

	return nil
}

func (s *BookingService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	bookings, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}
