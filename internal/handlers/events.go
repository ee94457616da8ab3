package handlers

import (
	"net/http"

	"eventhub/internal/models"

	"github.com/gin-gonic/gin"
)

// ListEvents - GET /api/v1/events
// Каталог: фильтры category, venue, minPrice, maxPrice; сортировка sortBy/sortOrder; page/limit
func (h *Handlers) ListEvents(c *gin.Context) {
	var q models.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.events.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "list events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchEvents - GET /api/v1/events/search?q=
// Полнотекстовый поиск
func (h *Handlers) SearchEvents(c *gin.Context) {
	var q models.SearchEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.events.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "search events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/v1/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "get event")
		return
	}

	c.JSON(http.StatusOK, models.EventResponse{Success: true, Event: event})
}

// CreateEvent - POST /api/v1/events
// Тело в JSON или form/multipart
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	event, err := h.events.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "create event")
		return
	}

	c.JSON(http.StatusCreated, models.EventResponse{
		Success: true,
		Message: "Event created successfully",
		Event:   event,
	})
}

// UpdateEvent - PUT /api/v1/events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	event, err := h.events.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "update event")
		return
	}

	c.JSON(http.StatusOK, models.EventResponse{
		Success: true,
		Message: "Event updated",
		Event:   event,
	})
}

// DeleteEvent - DELETE /api/v1/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "delete event")
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Event deleted"})
}
