package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"eventhub/internal/models"

	"github.com/google/uuid"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewTestClient creates a new test client acting with the given bearer token
func NewTestClient(baseURL, token string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Do makes an HTTP request and returns the response; the caller closes the body
func (c *TestClient) Do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// Expect makes a request, fails the test on an unexpected status and decodes the body into out
func (c *TestClient) Expect(t *testing.T, method, path string, body any, status int, out any) {
	t.Helper()

	resp := c.Do(t, method, path, body)
	defer resp.Body.Close()

	if resp.StatusCode != status {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected status %d, got %d. Body: %s", method, path, status, resp.StatusCode, raw)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("%s %s: failed to decode response: %v", method, path, err)
	}
}

// ListEvents returns one catalog page for the raw query string
func (c *TestClient) ListEvents(t *testing.T, query string) *models.ListEventsResponse {
	t.Helper()
	var page models.ListEventsResponse
	c.Expect(t, http.MethodGet, "/api/v1/events"+query, nil, http.StatusOK, &page)
	return &page
}

// CreateCategory creates a category (admin)
func (c *TestClient) CreateCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	var resp models.CategoryResponse
	c.Expect(t, http.MethodPost, "/api/v1/categories", models.CategoryRequest{Name: name}, http.StatusCreated, &resp)
	return resp.Category
}

// CreateEvent creates an event (admin)
func (c *TestClient) CreateEvent(t *testing.T, req models.EventRequest) *models.Event {
	t.Helper()
	var resp models.EventResponse
	c.Expect(t, http.MethodPost, "/api/v1/events", req, http.StatusCreated, &resp)
	return resp.Event
}

// CreateBooking books an event and expects success
func (c *TestClient) CreateBooking(t *testing.T, eventID uuid.UUID) *models.Booking {
	t.Helper()
	var resp models.BookingResponse
	c.Expect(t, http.MethodPost, "/api/v1/bookings", models.CreateBookingRequest{EventID: eventID.String()}, http.StatusCreated, &resp)
	return resp.Booking
}

// ListMyBookings lists the caller's bookings
func (c *TestClient) ListMyBookings(t *testing.T) []models.Booking {
	t.Helper()
	var resp models.ListBookingsResponse
	c.Expect(t, http.MethodGet, "/api/v1/bookings/me", nil, http.StatusOK, &resp)
	return resp.Bookings
}

// CancelBooking cancels a booking and returns the status code
func (c *TestClient) CancelBooking(t *testing.T, bookingID uuid.UUID) int {
	t.Helper()
	resp := c.Do(t, http.MethodDelete, "/api/v1/bookings/"+bookingID.String(), nil)
	defer resp.Body.Close()
	return resp.StatusCode
}

// Delete removes a resource, ignoring the outcome; used for cleanup
func (c *TestClient) Delete(t *testing.T, path string) {
	t.Helper()
	resp := c.Do(t, http.MethodDelete, path, nil)
	resp.Body.Close()
}
