package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/metrics"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, userID string, admin bool, expires time.Time) string {
	t.Helper()
	claims := Claims{
		UserID:  userID,
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(testSecret, "token")}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID, "isAdmin": identity.IsAdmin})
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	r := protectedRouter()
	userID := uuid.NewString()

	tests := []struct {
		name  string
		setup func(req *http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"wrong secret", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, "other", userID, false, time.Now().Add(time.Hour)))
		}},
		{"expired", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, false, time.Now().Add(-time.Hour)))
		}},
		{"non uuid subject", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "42", false, time.Now().Add(time.Hour)))
		}},
		{"garbage", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not.a.jwt")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestAuthAcceptsHeaderAndCookie(t *testing.T) {
	r := protectedRouter()
	userID := uuid.NewString()
	token := signToken(t, testSecret, userID, false, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := protectedRouter(RequireAdmin())
	userID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, false, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, true, time.Now().Add(time.Hour)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAdmin":true`)
}

type fakeLimiter struct {
	allowance cache.Allowance
	err       error
	keys      []string
}

func (f *fakeLimiter) TakeToken(_ context.Context, key string, _ config.RateLimitConfig) (cache.Allowance, error) {
	f.keys = append(f.keys, key)
	return f.allowance, f.err
}

func limitedRouter(limiter TokenTaker, cfg config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/bookings", RateLimit(limiter, cfg), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRateLimitBlocksWithRetryAfter(t *testing.T) {
	limiter := &fakeLimiter{allowance: cache.Allowance{Allowed: false, RetryAfter: 2500 * time.Millisecond}}
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 5, Prefix: "rl"}

	w := httptest.NewRecorder()
	limitedRouter(limiter, cfg).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	require.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], "rl:ip:")
	assert.Contains(t, limiter.keys[0], "POST /bookings")
}

func TestRateLimitPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 5, Prefix: "rl"}

	allowed := &fakeLimiter{allowance: cache.Allowance{Allowed: true, Remaining: 4}}
	w := httptest.NewRecorder()
	limitedRouter(allowed, cfg).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

	broken := &fakeLimiter{err: errors.New("connection refused")}
	w = httptest.NewRecorder()
	limitedRouter(broken, cfg).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	limitedRouter(nil, cfg).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	disabled := &fakeLimiter{allowance: cache.Allowance{Allowed: false}}
	w = httptest.NewRecorder()
	limitedRouter(disabled, config.RateLimitConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, disabled.keys)
}

func TestRequestIDKeepsValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEqual(t, "<script>", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+uuid.NewString(), nil))
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `eventhub_http_requests_total{method="GET",route="/events/:id",status="200"} 3`)
}

func TestIdentityFromEmptyContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := IdentityFrom(c)
	assert.False(t, ok)

	c.Set(identityKey, models.Identity{IsAdmin: true})
	identity, ok := IdentityFrom(c)
	assert.True(t, ok)
	assert.True(t, identity.IsAdmin)
}

func TestIssueTokenRoundTripsThroughAuth(t *testing.T) {
	r := protectedRouter(RequireAdmin())
	identity := models.Identity{UserID: uuid.New(), IsAdmin: true}

	token, err := IssueToken(testSecret, identity, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), identity.UserID.String())

	expired, err := IssueToken(testSecret, identity, -time.Minute)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
