package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/messaging"
	"eventhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *mockEventStore) List(ctx context.Context, filter models.EventFilter, sort models.EventSort, skip, limit int) ([]models.Event, int, error) {
	args := m.Called(ctx, filter, sort, skip, limit)
	events, _ := args.Get(0).([]models.Event)
	return events, args.Int(1), args.Error(2)
}

func (m *mockEventStore) Create(ctx context.Context, draft *models.EventDraft) (*models.Event, error) {
	args := m.Called(ctx, draft)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *mockEventStore) Update(ctx context.Context, id uuid.UUID, draft *models.EventDraft) (*models.Event, error) {
	args := m.Called(ctx, id, draft)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *mockEventStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *mockCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *mockCategoryStore) Create(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *mockCategoryStore) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	args := m.Called(ctx, id, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *mockCategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) IndexEvent(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockIndex) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) Search(ctx context.Context, query string, from, size int) ([]models.Event, int, error) {
	args := m.Called(ctx, query, from, size)
	events, _ := args.Get(0).([]models.Event)
	return events, args.Int(1), args.Error(2)
}

type mockBus struct{ mock.Mock }

func (m *mockBus) Publish(ctx context.Context, subject string, data any) error {
	return m.Called(ctx, subject, data).Error(0)
}

func (m *mockBus) Subscribe(subject, queue string, handler messaging.Handler) error {
	return m.Called(subject, queue, handler).Error(0)
}

func (m *mockBus) Close() error { return nil }

// memoryLedger enforces (user, event) uniqueness under a mutex, like the bookings_user_event_key constraint.
type memoryLedger struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]models.Booking
	pairs    map[[2]uuid.UUID]uuid.UUID
	clock    time.Time
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		bookings: map[uuid.UUID]models.Booking{},
		pairs:    map[[2]uuid.UUID]uuid.UUID{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (l *memoryLedger) Create(_ context.Context, userID, eventID uuid.UUID) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := [2]uuid.UUID{userID, eventID}
	if _, ok := l.pairs[key]; ok {
		return nil, models.ErrAlreadyBooked
	}

	l.clock = l.clock.Add(time.Second)
	booking := models.Booking{ID: uuid.New(), UserID: userID, EventID: eventID, BookedAt: l.clock}
	l.bookings[booking.ID] = booking
	l.pairs[key] = booking.ID
	return &booking, nil
}

func (l *memoryLedger) DeleteOwned(_ context.Context, bookingID, userID uuid.UUID) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	booking, ok := l.bookings[bookingID]
	if !ok || booking.UserID != userID {
		return nil, models.ErrBookingNotFound
	}
	delete(l.bookings, bookingID)
	delete(l.pairs, [2]uuid.UUID{booking.UserID, booking.EventID})
	return &booking, nil
}

func (l *memoryLedger) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []models.Booking{}
	for _, b := range l.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

func (l *memoryLedger) ListAll(context.Context) ([]models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Booking, 0, len(l.bookings))
	for _, b := range l.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out, nil
}

// memoryCatalog applies filter and sort semantics of the events table in memory.
type memoryCatalog struct {
	events []models.Event
}

func (c *memoryCatalog) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	for i := range c.events {
		if c.events[i].ID == id {
			return &c.events[i], nil
		}
	}
	return nil, models.ErrEventNotFound
}

func (c *memoryCatalog) List(_ context.Context, filter models.EventFilter, order models.EventSort, skip, limit int) ([]models.Event, int, error) {
	if skip < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("OFFSET must not be negative: %d", skip)
	}
	matched := []models.Event{}
	for _, e := range c.events {
		if filter.CategoryID != nil && e.Category.ID != *filter.CategoryID {
			continue
		}
		if filter.Venue != "" && !strings.Contains(strings.ToLower(e.Venue), strings.ToLower(filter.Venue)) {
			continue
		}
		if filter.MinPrice != nil && e.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && e.Price > *filter.MaxPrice {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var cmp int
		if order.Field == models.SortByPrice {
			cmp = compareFloat(a.Price, b.Price)
		} else {
			cmp = a.Date.Compare(b.Date)
		}
		if order.Order == models.SortDesc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.ID.String() < b.ID.String()
	})

	total := len(matched)
	if skip >= total {
		return []models.Event{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (c *memoryCatalog) Create(context.Context, *models.EventDraft) (*models.Event, error) {
	panic("not used")
}

func (c *memoryCatalog) Update(context.Context, uuid.UUID, *models.EventDraft) (*models.Event, error) {
	panic("not used")
}

func (c *memoryCatalog) Delete(context.Context, uuid.UUID) (bool, error) {
	panic("not used")
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
