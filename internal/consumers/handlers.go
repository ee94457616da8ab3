package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"eventhub/internal/models"

	"github.com/google/uuid"
)

// SearchIndex - часть поискового индекса, которую обновляют консьюмеры
type SearchIndex interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

type Handlers struct {
	index SearchIndex
	log   *slog.Logger
}

// NewHandlers создает обработчики. index == nil отключает синхронизацию поиска.
func NewHandlers(index SearchIndex, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{index: index, log: log}
}

// HandleAudit пишет строку аудита для любого факта шины.
// Нераспознанное тело логируется, но сообщение подтверждается.
func (h *Handlers) HandleAudit(_ context.Context, subject string, data []byte) error {
	switch subject {
	case models.SubjectBookingCreated, models.SubjectBookingCancelled:
		var event models.BookingCreatedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.log.Error("Failed to unmarshal booking event", "subject", subject, "error", err)
			return nil
		}
		h.log.Info("Audit",
			"subject", subject,
			"booking_id", event.BookingID,
			"event_id", event.EventID,
			"user_id", event.UserID,
			"at", event.Timestamp)

	case models.SubjectEventCreated, models.SubjectEventUpdated:
		var event models.EventChangedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.log.Error("Failed to unmarshal event change", "subject", subject, "error", err)
			return nil
		}
		h.log.Info("Audit",
			"subject", subject,
			"event_id", event.Event.ID,
			"name", event.Event.Name,
			"at", event.Timestamp)

	case models.SubjectEventDeleted:
		var event models.EventDeletedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.log.Error("Failed to unmarshal event deletion", "subject", subject, "error", err)
			return nil
		}
		h.log.Info("Audit", "subject", subject, "event_id", event.EventID, "at", event.Timestamp)

	default:
		h.log.Warn("Audit for unknown subject", "subject", subject, "bytes", len(data))
	}
	return nil
}

// HandleEventChanged копирует событие в поисковый индекс.
// Ошибка индекса возвращается, чтобы брокер доставил сообщение повторно.
func (h *Handlers) HandleEventChanged(ctx context.Context, subject string, data []byte) error {
	if h.index == nil {
		return nil
	}

	var event models.EventChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.log.Error("Failed to unmarshal event change", "subject", subject, "error", err)
		return nil
	}

	if err := h.index.IndexEvent(ctx, &event.Event); err != nil {
		return fmt.Errorf("failed to index event %s: %w", event.Event.ID, err)
	}
	h.log.Debug("Event indexed", "event_id", event.Event.ID)
	return nil
}

// HandleEventDeleted удаляет событие из поискового индекса
func (h *Handlers) HandleEventDeleted(ctx context.Context, subject string, data []byte) error {
	if h.index == nil {
		return nil
	}

	var event models.EventDeletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.log.Error("Failed to unmarshal event deletion", "subject", subject, "error", err)
		return nil
	}

	if err := h.index.DeleteEvent(ctx, event.EventID); err != nil {
		return fmt.Errorf("failed to remove event %s from index: %w", event.EventID, err)
	}
	h.log.Debug("Event removed from index", "event_id", event.EventID)
	return nil
}
