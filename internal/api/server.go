package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/handlers"
	"eventhub/internal/messaging"
	"eventhub/internal/metrics"
	"eventhub/internal/middleware"
	"eventhub/internal/repository"
	"eventhub/internal/search"
	"eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "eventhub-api"
	serviceVersion = "1.0.0"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	bus      messaging.Bus
	valkey   *cache.ValkeyClient
	cache    pinger
	search   *search.ElasticsearchClient
	metrics  *metrics.Metrics
	services *service.Services
}

// NewServer подключает хранилища и брокер, запускает миграции и настраивает роуты.
// Elasticsearch и Valkey необязательны: при ошибке подключения сервер работает без них.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := messaging.New(cfg.Messaging)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to message broker: %w", err)
	}

	s := &Server{
		config:  cfg,
		db:      db,
		bus:     bus,
		metrics: metrics.New(),
	}

	var index service.EventIndex
	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, search disabled", "error", err)
		} else {
			s.search = es
			index = es
		}
	}

	if cfg.Valkey.Enabled {
		valkey, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, rate limiting disabled", "error", err)
		} else {
			s.valkey = valkey
			s.cache = valkey
		}
	}

	repos := repository.NewRepositories(db)
	s.services = service.NewServices(repos, index, bus, s.metrics, service.Catalog{
		DefaultLimit: cfg.Catalog.DefaultLimit,
		MaxLimit:     cfg.Catalog.MaxLimit,
	})

	s.router = newRouter(cfg, s.metrics)
	s.setupRoutes(handlers.NewHandlers(s.services))

	return s, nil
}

func newRouter(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(m))
	return router
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes(h *handlers.Handlers) {
	auth := middleware.Auth(s.config.Auth.JWTSecret, s.config.Auth.CookieName)
	admin := middleware.RequireAdmin()

	var limiter middleware.TokenTaker
	if s.valkey != nil {
		limiter = s.valkey
	}
	bookingLimit := middleware.RateLimit(limiter, s.config.RateLimit)

	api := s.router.Group("/api/v1")
	{
		// Events endpoints
		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/search", h.SearchEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("", auth, admin, h.CreateEvent)
			events.PUT("/:id", auth, admin, h.UpdateEvent)
			events.DELETE("/:id", auth, admin, h.DeleteEvent)
		}

		// Categories endpoints
		categories := api.Group("/categories")
		{
			categories.GET("", h.ListCategories)
			categories.GET("/:id", h.GetCategory)
			categories.POST("", auth, admin, h.CreateCategory)
			categories.PUT("/:id", auth, admin, h.UpdateCategory)
			categories.DELETE("/:id", auth, admin, h.DeleteCategory)
		}

		// Bookings endpoints
		bookings := api.Group("/bookings", auth)
		{
			bookings.POST("", bookingLimit, h.CreateBooking)
			bookings.GET("/me", h.ListMyBookings)
			bookings.DELETE("/:id", h.CancelBooking)
			bookings.GET("", admin, h.ListAllBookings)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.NoRoute(handlers.NotFound)
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	}

	status := http.StatusOK
	if s.db != nil {
		check := s.db.HealthCheck(c.Request.Context())
		body["database"] = check
		if check.Status != "healthy" {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if s.search != nil {
		if err := s.search.HealthCheck(c.Request.Context()); err != nil {
			body["search"] = "unhealthy"
		} else {
			body["search"] = "healthy"
		}
	}
	// без Valkey лимитер пропускает запросы, поэтому статус не меняется
	if s.cache != nil {
		if err := s.cache.Ping(c.Request.Context()); err != nil {
			body["cache"] = "unhealthy"
		} else {
			body["cache"] = "healthy"
		}
	}

	c.JSON(status, body)
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			slog.Error("Error closing message broker connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
