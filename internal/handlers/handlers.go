package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventService - операции каталога, нужные обработчикам
type EventService interface {
	Get(ctx context.Context, rawID string) (*models.Event, error)
	List(ctx context.Context, q models.ListEventsQuery) (*models.ListEventsResponse, error)
	Search(ctx context.Context, q models.SearchEventsQuery) (*models.ListEventsResponse, error)
	Create(ctx context.Context, req *models.EventRequest) (*models.Event, error)
	Update(ctx context.Context, rawID string, req *models.EventRequest) (*models.Event, error)
	Delete(ctx context.Context, rawID string) error
}

// CategoryService - операции над категориями
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, rawID string) (*models.Category, error)
	Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, rawID string, req *models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, rawID string) error
}

// BookingService - операции над бронированиями
type BookingService interface {
	Book(ctx context.Context, userID uuid.UUID, rawEventID string) (*models.Booking, error)
	Cancel(ctx context.Context, userID uuid.UUID, rawBookingID string) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
}

type Handlers struct {
	events     EventService
	categories CategoryService
	bookings   BookingService
}

func NewHandlers(services *service.Services) *Handlers {
	return New(services.Events, services.Categories, services.Bookings)
}

func New(events EventService, categories CategoryService, bookings BookingService) *Handlers {
	return &Handlers{
		events:     events,
		categories: categories,
		bookings:   bookings,
	}
}

// NotFound - ответ для неизвестных маршрутов
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.MessageResponse{
		Success: false,
		Message: "Not found - " + c.Request.URL.Path,
	})
}

// respondError выбирает HTTP статус по виду ошибки. Неожиданные ошибки
// логируются, а клиент получает общее сообщение.
func respondError(c *gin.Context, err error, action string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
		_ = c.Error(err)
	} else {
		slog.Debug("Request rejected", "action", action, "status", status, "error", err)
	}

	c.JSON(status, models.MessageResponse{
		Success: false,
		Message: models.Message(err, "Internal server error"),
	})
}

// respondBindError превращает ошибку привязки запроса в ответ 400
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.MessageResponse{
		Success: false,
		Message: bindMessage(err),
	})
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "url":
			msgs = append(msgs, field+" must be absolute URLs")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
