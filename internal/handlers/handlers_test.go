package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-secret"

type fakeEvents struct{ mock.Mock }

func (f *fakeEvents) Get(ctx context.Context, rawID string) (*models.Event, error) {
	args := f.Called(ctx, rawID)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (f *fakeEvents) List(ctx context.Context, q models.ListEventsQuery) (*models.ListEventsResponse, error) {
	args := f.Called(ctx, q)
	res, _ := args.Get(0).(*models.ListEventsResponse)
	return res, args.Error(1)
}

func (f *fakeEvents) Search(ctx context.Context, q models.SearchEventsQuery) (*models.ListEventsResponse, error) {
	args := f.Called(ctx, q)
	res, _ := args.Get(0).(*models.ListEventsResponse)
	return res, args.Error(1)
}

func (f *fakeEvents) Create(ctx context.Context, req *models.EventRequest) (*models.Event, error) {
	args := f.Called(ctx, req)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (f *fakeEvents) Update(ctx context.Context, rawID string, req *models.EventRequest) (*models.Event, error) {
	args := f.Called(ctx, rawID, req)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (f *fakeEvents) Delete(ctx context.Context, rawID string) error {
	return f.Called(ctx, rawID).Error(0)
}

type fakeCategories struct{ mock.Mock }

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	args := f.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (f *fakeCategories) Get(ctx context.Context, rawID string) (*models.Category, error) {
	args := f.Called(ctx, rawID)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (f *fakeCategories) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	args := f.Called(ctx, req)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (f *fakeCategories) Update(ctx context.Context, rawID string, req *models.CategoryRequest) (*models.Category, error) {
	args := f.Called(ctx, rawID, req)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (f *fakeCategories) Delete(ctx context.Context, rawID string) error {
	return f.Called(ctx, rawID).Error(0)
}

type fakeBookings struct{ mock.Mock }

func (f *fakeBookings) Book(ctx context.Context, userID uuid.UUID, rawEventID string) (*models.Booking, error) {
	args := f.Called(ctx, userID, rawEventID)
	booking, _ := args.Get(0).(*models.Booking)
	return booking, args.Error(1)
}

func (f *fakeBookings) Cancel(ctx context.Context, userID uuid.UUID, rawBookingID string) error {
	return f.Called(ctx, userID, rawBookingID).Error(0)
}

func (f *fakeBookings) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	args := f.Called(ctx, userID)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (f *fakeBookings) ListAll(ctx context.Context) ([]models.Booking, error) {
	args := f.Called(ctx)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

type fixture struct {
	router     *gin.Engine
	events     *fakeEvents
	categories *fakeCategories
	bookings   *fakeBookings
}

func setupRouter() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{events: &fakeEvents{}, categories: &fakeCategories{}, bookings: &fakeBookings{}}
	h := New(f.events, f.categories, f.bookings)

	r := gin.New()
	auth := middleware.Auth(testSecret, "token")
	admin := middleware.RequireAdmin()

	api := r.Group("/api/v1")
	{
		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/search", h.SearchEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("", auth, admin, h.CreateEvent)
			events.PUT("/:id", auth, admin, h.UpdateEvent)
			events.DELETE("/:id", auth, admin, h.DeleteEvent)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.ListCategories)
			categories.GET("/:id", h.GetCategory)
			categories.POST("", auth, admin, h.CreateCategory)
			categories.PUT("/:id", auth, admin, h.UpdateCategory)
			categories.DELETE("/:id", auth, admin, h.DeleteCategory)
		}

		bookings := api.Group("/bookings", auth)
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("/me", h.ListMyBookings)
			bookings.DELETE("/:id", h.CancelBooking)
			bookings.GET("", admin, h.ListAllBookings)
		}
	}
	r.NoRoute(NotFound)

	f.router = r
	return f
}

func bearer(t *testing.T, userID uuid.UUID, admin bool) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID:  userID.String(),
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) models.MessageResponse {
	t.Helper()
	var body models.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListEventsBindsQuery(t *testing.T) {
	f := setupRouter()
	want := models.ListEventsQuery{Category: "c1", Venue: "Hall", MinPrice: "10", SortBy: "price", SortOrder: "desc", Page: "2", Limit: "3"}
	f.events.On("List", mock.Anything, want).Return(&models.ListEventsResponse{
		Success: true,
		Events:  []models.Event{},
		Meta:    models.PageMeta{Total: 4, Pages: 2, CurPage: 2, Limit: 3},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?category=c1&venue=Hall&minPrice=10&sortBy=price&sortOrder=desc&page=2&limit=3", nil)
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"events":[],"meta":{"total":4,"pages":2,"curpage":2,"limit":3}}`, w.Body.String())
}

func TestListEventsInvalidFilterIs400(t *testing.T) {
	f := setupRouter()
	f.events.On("List", mock.Anything, mock.Anything).Return(nil, models.ErrInvalidPrice)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events?minPrice=abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeMessage(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, models.ErrInvalidPrice.Msg, body.Message)
}

func TestListEventsStoreFailureIs500(t *testing.T) {
	f := setupRouter()
	f.events.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused"))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeMessage(t, w).Message)
}

func TestSearchEvents(t *testing.T) {
	f := setupRouter()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.events.On("Search", mock.Anything, models.SearchEventsQuery{Q: "jazz"}).Return(nil, models.ErrSearchDisabled)
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/search?q=jazz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetEventStatuses(t *testing.T) {
	f := setupRouter()
	id := uuid.New()
	f.events.On("Get", mock.Anything, id.String()).Return(&models.Event{ID: id, Name: "Show"}, nil)
	f.events.On("Get", mock.Anything, "bad").Return(nil, models.ErrInvalidEventID)
	f.events.On("Get", mock.Anything, "missing").Return(nil, models.ErrEventNotFound)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Show"`)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid event ID", decodeMessage(t, w).Message)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/events/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func eventBody() map[string]any {
	return map[string]any{
		"name":        "Jazz Night",
		"description": "Live quartet",
		"category":    uuid.NewString(),
		"date":        "2026-07-01T20:00:00Z",
		"venue":       "Blue Hall",
		"price":       0,
		"images":      []string{"https://cdn.example.com/a.jpg"},
	}
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	f := setupRouter()
	payload, _ := json.Marshal(eventBody())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New(), false))
	assert.Equal(t, http.StatusForbidden, f.do(req).Code)

	f.events.AssertNotCalled(t, "Create")
}

func TestCreateEventJSON(t *testing.T) {
	f := setupRouter()
	created := &models.Event{ID: uuid.New(), Name: "Jazz Night"}
	f.events.On("Create", mock.Anything, mock.MatchedBy(func(req *models.EventRequest) bool {
		return req.Name == "Jazz Night" && req.Price != nil && *req.Price == 0 && len(req.Images) == 1
	})).Return(created, nil)

	payload, _ := json.Marshal(eventBody())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))
	w := f.do(req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body models.EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Event created successfully", body.Message)
	assert.Equal(t, created.ID, body.Event.ID)
}

func TestCreateEventForm(t *testing.T) {
	f := setupRouter()
	f.events.On("Create", mock.Anything, mock.MatchedBy(func(req *models.EventRequest) bool {
		return req.Venue == "Arena" && len(req.Images) == 2 && req.Date.Equal(time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC))
	})).Return(&models.Event{ID: uuid.New()}, nil)

	form := url.Values{}
	form.Set("name", "Cup final")
	form.Set("description", "Football")
	form.Set("category", uuid.NewString())
	form.Set("date", "2026-07-01T20:00:00Z")
	form.Set("venue", "Arena")
	form.Set("price", "15.5")
	form.Add("images", "https://cdn.example.com/1.jpg")
	form.Add("images", "https://cdn.example.com/2.jpg")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))

	assert.Equal(t, http.StatusCreated, f.do(req).Code)
	f.events.AssertExpectations(t)
}

func TestCreateEventValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing name", func(b map[string]any) { delete(b, "name") }, "name is required"},
		{"long venue", func(b map[string]any) { b["venue"] = strings.Repeat("v", 201) }, "venue must be at most 200 characters"},
		{"negative price", func(b map[string]any) { b["price"] = -1 }, "price must be at least 0"},
		{"missing price", func(b map[string]any) { delete(b, "price") }, "price is required"},
		{"price overflows column", func(b map[string]any) { b["price"] = 1e12 }, "price must be at most 9999999999.99"},
		{"relative image", func(b map[string]any) { b["images"] = []string{"uploads/a.jpg"} }, "must be absolute URLs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter()
			body := eventBody()
			tt.mutate(body)
			payload, _ := json.Marshal(body)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearer(t, uuid.New(), true))
			w := f.do(req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeMessage(t, w).Message, tt.want)
			f.events.AssertNotCalled(t, "Create")
		})
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	f := setupRouter()
	id := uuid.New()
	f.events.On("Update", mock.Anything, id.String(), mock.Anything).Return(nil, models.ErrUnknownCategory)
	f.events.On("Delete", mock.Anything, id.String()).Return(nil)

	payload, _ := json.Marshal(eventBody())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+id.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))
	w := f.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category not found", decodeMessage(t, w).Message)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/events/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Event deleted"}`, w.Body.String())
}

func TestCategoryRoutes(t *testing.T) {
	f := setupRouter()
	id := uuid.New()
	f.categories.On("List", mock.Anything).Return([]models.Category{{ID: id, Name: "Music"}}, nil)
	f.categories.On("Create", mock.Anything, &models.CategoryRequest{Name: "Music"}).Return(nil, models.ErrCategoryExists)
	f.categories.On("Delete", mock.Anything, id.String()).Return(models.ErrCategoryNotFound)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Music"`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":"Music"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))
	w = f.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category already exists", decodeMessage(t, w).Message)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+id.String(), nil)
	req.Header.Set("Authorization", bearer(t, uuid.New(), true))
	assert.Equal(t, http.StatusNotFound, f.do(req).Code)
}

func TestCreateBooking(t *testing.T) {
	f := setupRouter()
	userID, eventID := uuid.New(), uuid.New()
	f.bookings.On("Book", mock.Anything, userID, eventID.String()).Return(&models.Booking{ID: uuid.New(), UserID: userID, EventID: eventID}, nil).Once()
	f.bookings.On("Book", mock.Anything, userID, eventID.String()).Return(nil, models.ErrAlreadyBooked).Once()

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"eventId":"`+eventID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "token", Value: strings.TrimPrefix(bearer(t, userID, false), "Bearer ")})
		return f.do(req)
	}

	w := post()
	assert.Equal(t, http.StatusCreated, w.Code)
	var body models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Event booked successfully", body.Message)
	assert.Equal(t, eventID, body.Booking.EventID)

	w = post()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already booked this event", decodeMessage(t, w).Message)
}

func TestCreateBookingBadBody(t *testing.T) {
	f := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, uuid.New(), false))
	w := f.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid event ID", decodeMessage(t, w).Message)
	f.bookings.AssertNotCalled(t, "Book")
}

func TestCancelBookingNotOwned(t *testing.T) {
	f := setupRouter()
	userID, bookingID := uuid.New(), uuid.New()
	f.bookings.On("Cancel", mock.Anything, userID, bookingID.String()).Return(models.ErrBookingNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/"+bookingID.String(), nil)
	req.Header.Set("Authorization", bearer(t, userID, false))
	w := f.do(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", decodeMessage(t, w).Message)
}

func TestListBookings(t *testing.T) {
	f := setupRouter()
	userID := uuid.New()
	f.bookings.On("ListMine", mock.Anything, userID).Return([]models.Booking{}, nil)
	f.bookings.On("ListAll", mock.Anything).Return([]models.Booking{{ID: uuid.New()}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/me", nil)
	req.Header.Set("Authorization", bearer(t, userID, false))
	w := f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"bookings":[]}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", bearer(t, userID, false))
	assert.Equal(t, http.StatusForbidden, f.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", bearer(t, userID, true))
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[`)
}

func TestUnknownRoute(t *testing.T) {
	f := setupRouter()

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not found - /api/v1/nope"}`, w.Body.String())
}
