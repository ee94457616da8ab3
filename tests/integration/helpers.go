package integration

import (
	"net/http"
	"os"
	"testing"
	"time"

	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"github.com/google/uuid"
)

const defaultAPIBaseURL = "http://localhost:8081"

// Env is a running API plus clients for an admin and two regular users
type Env struct {
	BaseURL string
	Public  *TestClient
	Admin   *TestClient
	User    *TestClient
	Other   *TestClient
}

// NewEnv targets INTEGRATION_API_URL and signs tokens with JWT_SECRET.
// Skips when the secret is unset or the API is unreachable.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		t.Skip("JWT_SECRET not set, skipping API integration tests")
	}

	baseURL := os.Getenv("INTEGRATION_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	ping := &http.Client{Timeout: 2 * time.Second}
	resp, err := ping.Get(baseURL + "/health")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()

	return &Env{
		BaseURL: baseURL,
		Public:  NewTestClient(baseURL, ""),
		Admin:   NewTestClient(baseURL, issue(t, secret, true)),
		User:    NewTestClient(baseURL, issue(t, secret, false)),
		Other:   NewTestClient(baseURL, issue(t, secret, false)),
	}
}

func issue(t *testing.T, secret string, admin bool) string {
	t.Helper()
	token, err := middleware.IssueToken(secret, models.Identity{UserID: uuid.New(), IsAdmin: admin}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// SeedEvent creates a throwaway category and event and removes both when the test ends
func (e *Env) SeedEvent(t *testing.T, name, venue string, price float64, date time.Time) *models.Event {
	t.Helper()

	category := e.Admin.CreateCategory(t, "it-"+uuid.NewString()[:8])
	t.Cleanup(func() { e.Admin.Delete(t, "/api/v1/categories/"+category.ID.String()) })

	event := e.Admin.CreateEvent(t, models.EventRequest{
		Name:        name,
		Description: name + " (integration)",
		Category:    category.ID.String(),
		Date:        date.UTC().Truncate(time.Second),
		Venue:       venue,
		Price:       &price,
	})
	t.Cleanup(func() { e.Admin.Delete(t, "/api/v1/events/"+event.ID.String()) })

	return event
}

// FindBooking returns the booking with id from the list, or nil
func FindBooking(bookings []models.Booking, id uuid.UUID) *models.Booking {
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i]
		}
	}
	return nil
}

// LogTestStep logs a test step for better debugging
func LogTestStep(t *testing.T, step string, args ...any) {
	t.Logf("🔹 "+step, args...)
}

// LogTestResult logs a test result
func LogTestResult(t *testing.T, result string, args ...any) {
	t.Logf("✅ "+result, args...)
}
