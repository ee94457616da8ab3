package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"eventhub/internal/logger"
	"eventhub/internal/messaging"
	"eventhub/internal/models"
)

type EventService struct {
	events  EventStore
	index   EventIndex
	bus     messaging.Bus
	catalog Catalog
}

// NewEventService создает сервис каталога. index == nil отключает поиск и зеркалирование.
func NewEventService(events EventStore, index EventIndex, bus messaging.Bus, catalog Catalog) *EventService {
	return &EventService{
		events:  events,
		index:   index,
		bus:     bus,
		catalog: catalog,
	}
}

func (s *EventService) Get(ctx context.Context, rawID string) (*models.Event, error) {
	id, err := models.ParseID(rawID, models.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List выполняет запрос каталога: фильтры, сортировка, страница и конверт пагинации
func (s *EventService) List(ctx context.Context, q models.ListEventsQuery) (*models.ListEventsResponse, error) {
	req, err := s.catalog.Parse(q)
	if err != nil {
		return nil, err
	}

	events, total, err := s.events.List(ctx, req.Filter, req.Sort, req.Skip(), req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return &models.ListEventsResponse{
		Success: true,
		Events:  events,
		Meta:    NewPageMeta(total, req.Page, req.Limit),
	}, nil
}

// Search - полнотекстовый поиск по индексу Elasticsearch
func (s *EventService) Search(ctx context.Context, q models.SearchEventsQuery) (*models.ListEventsResponse, error) {
	if s.index == nil {
		return nil, models.ErrSearchDisabled
	}

	page, limit := s.catalog.ParsePaging(q.Page, q.Limit)
	query := strings.TrimSpace(q.Q)

	from, size := (page-1)*limit, limit
	if from > MaxSearchWindow-size {
		// past the index window: only the hit count is fetched
		from, size = 0, 0
	}

	events, total, err := s.index.Search(ctx, query, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	if size == 0 {
		events = []models.Event{}
	}

	return &models.ListEventsResponse{
		Success: true,
		Events:  events,
		Meta:    NewPageMeta(total, page, limit),
	}, nil
}

func (s *EventService) Create(ctx context.Context, req *models.EventRequest) (*models.Event, error) {
	draft, err := draftFromRequest(req)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logger.WithContext(ctx).Info("Event created", "event_id", event.ID, "category_id", draft.CategoryID)

	s.mirror(ctx, event)
	publish(ctx, s.bus, models.SubjectEventCreated, models.EventChangedEvent{Event: *event, Timestamp: time.Now()})

	return event, nil
}

// Update полностью заменяет изменяемые поля события
func (s *EventService) Update(ctx context.Context, rawID string, req *models.EventRequest) (*models.Event, error) {
	id, err := models.ParseID(rawID, models.ErrInvalidEventID)
	if err != nil {
		return nil, err
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.mirror(ctx, event)
	publish(ctx, s.bus, models.SubjectEventUpdated, models.EventChangedEvent{Event: *event, Timestamp: time.Now()})

	return event, nil
}

// Delete удаляет событие. Бронирования этого события не удаляются.
func (s *EventService) Delete(ctx context.Context, rawID string) error {
	id, err := models.ParseID(rawID, models.ErrInvalidEventID)
	if err != nil {
		return err
	}

	found, err := s.events.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !found {
		return models.ErrEventNotFound
	}

	if s.index != nil {
		if err := s.index.DeleteEvent(ctx, id); err != nil {
			logger.WithContext(ctx).Error("Failed to remove event from search index", "error", err, "event_id", id)
		}
	}
	publish(ctx, s.bus, models.SubjectEventDeleted, models.EventDeletedEvent{EventID: id, Timestamp: time.Now()})

	return nil
}

func (s *EventService) mirror(ctx context.Context, event *models.Event) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexEvent(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to index event", "error", err, "event_id", event.ID)
	}
}

func draftFromRequest(req *models.EventRequest) (*models.EventDraft, error) {
	categoryID, err := models.ParseID(req.Category, models.ErrInvalidCategoryID)
	if err != nil {
		return nil, err
	}

	var price float64
	if req.Price != nil {
		price = *req.Price
	}
	if math.IsNaN(price) || price < 0 || price > models.MaxEventPrice {
		return nil, models.ErrEventPrice
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	return &models.EventDraft{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  categoryID,
		Date:        req.Date.UTC(),
		Venue:       strings.TrimSpace(req.Venue),
		Price:       price,
		Images:      images,
	}, nil
}

// IndexAll rebuilds the search index from every event passed to it.
func (s *EventService) IndexAll(ctx context.Context, each func(func(*models.Event) error) error) (int, error) {
	if s.index == nil {
		return 0, models.ErrSearchDisabled
	}

	count := 0
	err := each(func(event *models.Event) error {
		if err := s.index.IndexEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to index event %s: %w", event.ID, err)
		}
		count++
		return nil
	})
	return count, err
}
