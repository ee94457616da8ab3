package models

import (
	"time"

	"github.com/google/uuid"
)

// SortField - колонка сортировки каталога
type SortField string

const (
	SortByDate  SortField = "date"
	SortByPrice SortField = "price"
)

// SortOrder - направление сортировки
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// EventSort - первичный ключ сортировки; вторичный ключ всегда id ASC
type EventSort struct {
	Field SortField
	Order SortOrder
}

// EventFilter - конъюнкция фильтров каталога; nil/пустое поле не ограничивает выборку
type EventFilter struct {
	CategoryID *uuid.UUID
	Venue      string
	MinPrice   *float64
	MaxPrice   *float64
}

// ListEventsQuery - сырые параметры строки запроса GET /events.
// Значения приходят строками и приводятся в каталоге.
type ListEventsQuery struct {
	Category  string `form:"category"`
	Venue     string `form:"venue"`
	MinPrice  string `form:"minPrice"`
	MaxPrice  string `form:"maxPrice"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

// SearchEventsQuery - параметры полнотекстового поиска
type SearchEventsQuery struct {
	Q     string `form:"q" binding:"required"`
	Page  string `form:"page"`
	Limit string `form:"limit"`
}

// MaxEventPrice - наибольшая цена, которую хранит колонка NUMERIC(12,2)
const MaxEventPrice = 9999999999.99

// EventRequest - модель для создания и полной замены события (JSON или form/multipart)
type EventRequest struct {
	Name        string    `json:"name" form:"name" binding:"required,max=200"`
	Description string    `json:"description" form:"description" binding:"required"`
	Category    string    `json:"category" form:"category" binding:"required"`
	Date        time.Time `json:"date" form:"date" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	Venue       string    `json:"venue" form:"venue" binding:"required,max=200"`
	Price       *float64  `json:"price" form:"price" binding:"required,gte=0,lte=9999999999.99"`
	Images      []string  `json:"images" form:"images" binding:"omitempty,dive,url"`
}

// CategoryRequest - модель для создания и переименования категории
type CategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	EventID string `json:"eventId" binding:"required"`
}

// PageMeta - конверт пагинации
type PageMeta struct {
	Total   int `json:"total"`
	Pages   int `json:"pages"`
	CurPage int `json:"curpage"`
	Limit   int `json:"limit"`
}

// ListEventsResponse - страница каталога
type ListEventsResponse struct {
	Success bool     `json:"success"`
	Events  []Event  `json:"events"`
	Meta    PageMeta `json:"meta"`
}

// EventResponse - одно событие
type EventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Event   *Event `json:"event"`
}

// CategoryResponse - одна категория
type CategoryResponse struct {
	Success  bool      `json:"success"`
	Category *Category `json:"category"`
}

// ListCategoriesResponse - список категорий
type ListCategoriesResponse struct {
	Success    bool       `json:"success"`
	Categories []Category `json:"categories"`
}

// BookingResponse - созданное бронирование
type BookingResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Booking *Booking `json:"booking"`
}

// ListBookingsResponse - бронирования текущего пользователя
type ListBookingsResponse struct {
	Success  bool      `json:"success"`
	Bookings []Booking `json:"bookings"`
}

// AllBookingsResponse - все бронирования (для администратора)
type AllBookingsResponse struct {
	Success bool      `json:"success"`
	Data    []Booking `json:"data"`
}

// MessageResponse - ответ без данных
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
