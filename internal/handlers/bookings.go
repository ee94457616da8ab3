package handlers

import (
	"net/http"

	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Bookings handlers. Все маршруты стоят за middleware.Auth.

// CreateBooking - POST /api/v1/bookings
// Забронировать событие для текущего пользователя
func (h *Handlers) CreateBooking(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.ErrInvalidEventID, "create booking")
		return
	}

	booking, err := h.bookings.Book(c.Request.Context(), identity, req.EventID)
	if err != nil {
		respondError(c, err, "create booking")
		return
	}

	c.JSON(http.StatusCreated, models.BookingResponse{
		Success: true,
		Message: "Event booked successfully",
		Booking: booking,
	})
}

// ListMyBookings - GET /api/v1/bookings/me
func (h *Handlers) ListMyBookings(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListMine(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err, "list bookings")
		return
	}

	c.JSON(http.StatusOK, models.ListBookingsResponse{Success: true, Bookings: bookings})
}

// ListAllBookings - GET /api/v1/bookings (администратор)
func (h *Handlers) ListAllBookings(c *gin.Context) {
	bookings, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "list bookings")
		return
	}

	c.JSON(http.StatusOK, models.AllBookingsResponse{Success: true, Data: bookings})
}

// CancelBooking - DELETE /api/v1/bookings/:id
// Чужое бронирование неотличимо от отсутствующего
func (h *Handlers) CancelBooking(c *gin.Context) {
	identity, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), identity, c.Param("id")); err != nil {
		respondError(c, err, "cancel booking")
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Booking canceled"})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, models.ErrNotAuthenticated, "identify user")
		return uuid.Nil, false
	}
	return identity.UserID, true
}
