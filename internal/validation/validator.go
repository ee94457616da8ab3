package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"github.com/google/uuid"
)

// ContractValidator проверяет работающий API на соответствие контракту каталога и бронирований
type ContractValidator struct {
	baseURL   string
	jwtSecret string
	client    *http.Client

	adminToken string
	userToken  string
	otherToken string
}

// NewContractValidator создает валидатор. Без jwtSecret проверяются только публичные маршруты.
func NewContractValidator(baseURL, jwtSecret string) *ContractValidator {
	return &ContractValidator{
		baseURL:   baseURL,
		jwtSecret: jwtSecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ValidateAll проверяет все группы маршрутов
func (v *ContractValidator) ValidateAll() error {
	slog.Info("Starting API contract validation", "base_url", v.baseURL)

	if err := v.validateHealth(); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}

	if err := v.validateCatalog(); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	if err := v.validateAuthBoundary(); err != nil {
		return fmt.Errorf("auth validation failed: %w", err)
	}

	if v.jwtSecret == "" {
		slog.Warn("JWT secret not set, skipping admin and booking flows")
		return nil
	}

	if err := v.issueTokens(); err != nil {
		return err
	}

	if err := v.validateBookingFlow(); err != nil {
		return fmt.Errorf("booking validation failed: %w", err)
	}

	slog.Info("All endpoints passed validation")
	return nil
}

func (v *ContractValidator) validateHealth() error {
	resp, err := v.makeRequest(http.MethodGet, "/health", "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET /health: expected 200, got %d", resp.StatusCode)
	}
	return nil
}

func (v *ContractValidator) validateCatalog() error {
	slog.Info("Checking catalog endpoints")

	page, err := v.listEvents("?page=1&limit=1")
	if err != nil {
		return err
	}
	if page.Meta.Limit != 1 || page.Meta.CurPage != 1 {
		return fmt.Errorf("GET /events: expected limit=1 curpage=1, got %+v", page.Meta)
	}
	if len(page.Events) > 1 {
		return fmt.Errorf("GET /events: expected at most 1 event, got %d", len(page.Events))
	}
	if want := (page.Meta.Total + page.Meta.Limit - 1) / page.Meta.Limit; page.Meta.Pages != want {
		return fmt.Errorf("GET /events: expected pages=%d, got %d", want, page.Meta.Pages)
	}

	capped, err := v.listEvents("?limit=100000")
	if err != nil {
		return err
	}
	if capped.Meta.Limit > 100 {
		return fmt.Errorf("GET /events: limit not capped, got %d", capped.Meta.Limit)
	}

	clamped, err := v.listEvents("?page=-3&limit=abc")
	if err != nil {
		return err
	}
	if clamped.Meta.CurPage != 1 || clamped.Meta.Limit != 1 {
		return fmt.Errorf("GET /events: expected invalid page/limit to clamp to 1, got %+v", clamped.Meta)
	}

	sorted, err := v.listEvents("?sortBy=price&sortOrder=desc&limit=100")
	if err != nil {
		return err
	}
	for i := 1; i < len(sorted.Events); i++ {
		if sorted.Events[i-1].Price < sorted.Events[i].Price {
			return fmt.Errorf("GET /events: price desc order broken at position %d", i)
		}
	}

	checks := []struct {
		path   string
		status int
	}{
		{"/api/v1/events?minPrice=cheap", http.StatusBadRequest},
		{"/api/v1/events?category=nope", http.StatusBadRequest},
		{"/api/v1/events/not-a-uuid", http.StatusBadRequest},
		{"/api/v1/events/" + uuid.NewString(), http.StatusNotFound},
		{"/api/v1/categories", http.StatusOK},
	}
	for _, check := range checks {
		if err := v.expectStatus(http.MethodGet, check.path, "", nil, check.status, nil); err != nil {
			return err
		}
	}
	return nil
}

func (v *ContractValidator) validateAuthBoundary() error {
	slog.Info("Checking authentication boundary")

	body := models.CreateBookingRequest{EventID: uuid.NewString()}
	if err := v.expectStatus(http.MethodPost, "/api/v1/bookings", "", body, http.StatusUnauthorized, nil); err != nil {
		return err
	}
	if err := v.expectStatus(http.MethodGet, "/api/v1/bookings/me", "", nil, http.StatusUnauthorized, nil); err != nil {
		return err
	}
	return nil
}

func (v *ContractValidator) issueTokens() error {
	var err error
	if v.adminToken, err = middleware.IssueToken(v.jwtSecret, models.Identity{UserID: uuid.New(), IsAdmin: true}, 10*time.Minute); err != nil {
		return fmt.Errorf("failed to issue admin token: %w", err)
	}
	if v.userToken, err = middleware.IssueToken(v.jwtSecret, models.Identity{UserID: uuid.New()}, 10*time.Minute); err != nil {
		return fmt.Errorf("failed to issue user token: %w", err)
	}
	if v.otherToken, err = middleware.IssueToken(v.jwtSecret, models.Identity{UserID: uuid.New()}, 10*time.Minute); err != nil {
		return fmt.Errorf("failed to issue user token: %w", err)
	}
	return nil
}

// validateBookingFlow создает временные категорию и событие, проходит цикл
// бронь -> дубль -> отмена -> повторная бронь и убирает за собой.
func (v *ContractValidator) validateBookingFlow() error {
	slog.Info("Checking booking flow")

	var category models.CategoryResponse
	categoryReq := models.CategoryRequest{Name: "contract-check-" + uuid.NewString()[:8]}
	if err := v.expectStatus(http.MethodPost, "/api/v1/categories", v.adminToken, categoryReq, http.StatusCreated, &category); err != nil {
		return err
	}
	defer v.cleanup("/api/v1/categories/" + category.Category.ID.String())

	if err := v.expectStatus(http.MethodPost, "/api/v1/categories", v.adminToken, categoryReq, http.StatusBadRequest, nil); err != nil {
		return err
	}

	price := 15.0
	eventReq := models.EventRequest{
		Name:        "Contract check",
		Description: "Temporary event created by the contract validator",
		Category:    category.Category.ID.String(),
		Date:        time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second),
		Venue:       "Validator Hall",
		Price:       &price,
	}
	if err := v.expectStatus(http.MethodPost, "/api/v1/events", v.userToken, eventReq, http.StatusForbidden, nil); err != nil {
		return err
	}

	var event models.EventResponse
	if err := v.expectStatus(http.MethodPost, "/api/v1/events", v.adminToken, eventReq, http.StatusCreated, &event); err != nil {
		return err
	}
	eventPath := "/api/v1/events/" + event.Event.ID.String()
	defer v.cleanup(eventPath)

	bookingReq := models.CreateBookingRequest{EventID: event.Event.ID.String()}

	var booking models.BookingResponse
	if err := v.expectStatus(http.MethodPost, "/api/v1/bookings", v.userToken, bookingReq, http.StatusCreated, &booking); err != nil {
		return err
	}
	if err := v.expectStatus(http.MethodPost, "/api/v1/bookings", v.userToken, bookingReq, http.StatusBadRequest, nil); err != nil {
		return err
	}

	missing := models.CreateBookingRequest{EventID: uuid.NewString()}
	if err := v.expectStatus(http.MethodPost, "/api/v1/bookings", v.userToken, missing, http.StatusNotFound, nil); err != nil {
		return err
	}

	var mine models.ListBookingsResponse
	if err := v.expectStatus(http.MethodGet, "/api/v1/bookings/me", v.userToken, nil, http.StatusOK, &mine); err != nil {
		return err
	}
	if len(mine.Bookings) == 0 || mine.Bookings[0].ID != booking.Booking.ID {
		return fmt.Errorf("GET /bookings/me: expected newest booking %s first", booking.Booking.ID)
	}

	bookingPath := "/api/v1/bookings/" + booking.Booking.ID.String()
	if err := v.expectStatus(http.MethodDelete, bookingPath, v.otherToken, nil, http.StatusNotFound, nil); err != nil {
		return err
	}
	if err := v.expectStatus(http.MethodDelete, bookingPath, v.userToken, nil, http.StatusOK, nil); err != nil {
		return err
	}

	var rebooked models.BookingResponse
	if err := v.expectStatus(http.MethodPost, "/api/v1/bookings", v.userToken, bookingReq, http.StatusCreated, &rebooked); err != nil {
		return err
	}
	return v.expectStatus(http.MethodDelete, "/api/v1/bookings/"+rebooked.Booking.ID.String(), v.userToken, nil, http.StatusOK, nil)
}

func (v *ContractValidator) listEvents(query string) (*models.ListEventsResponse, error) {
	var page models.ListEventsResponse
	if err := v.expectStatus(http.MethodGet, "/api/v1/events"+query, "", nil, http.StatusOK, &page); err != nil {
		return nil, err
	}
	if !page.Success {
		return nil, fmt.Errorf("GET /events%s: expected success=true", query)
	}
	return &page, nil
}

func (v *ContractValidator) cleanup(path string) {
	if err := v.expectStatus(http.MethodDelete, path, v.adminToken, nil, http.StatusOK, nil); err != nil {
		slog.Warn("Cleanup failed", "path", path, "error", err)
	}
}

// expectStatus выполняет запрос, сверяет статус и при out != nil декодирует тело
func (v *ContractValidator) expectStatus(method, path, token string, body any, want int, out any) error {
	resp, err := v.makeRequest(method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, want, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

func (v *ContractValidator) makeRequest(method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}
