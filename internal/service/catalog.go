package service

import (
	"math"
	"strconv"
	"strings"

	"eventhub/internal/models"
)

const (
	DefaultCatalogLimit = 6
	MaxCatalogLimit     = 100

	// MaxSearchWindow is the deepest from+size Elasticsearch serves (index.max_result_window).
	MaxSearchWindow = 10000
)

// Catalog turns untrusted catalog query parameters into a bounded repository query.
type Catalog struct {
	DefaultLimit int
	MaxLimit     int
}

// CatalogRequest is a validated catalog query
type CatalogRequest struct {
	Filter models.EventFilter
	Sort   models.EventSort
	Page   int
	Limit  int
}

// Skip is the number of rows before the requested page
func (r CatalogRequest) Skip() int {
	return (r.Page - 1) * r.Limit
}

func (c Catalog) defaults() Catalog {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultCatalogLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = MaxCatalogLimit
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	return c
}

// Parse validates filters and coerces paging. Malformed price bounds or category ids are
// InvalidArgument; malformed page and limit become 1; sort keys fall back to date asc.
func (c Catalog) Parse(q models.ListEventsQuery) (CatalogRequest, error) {
	c = c.defaults()

	var req CatalogRequest

	if raw := strings.TrimSpace(q.Category); raw != "" {
		id, err := models.ParseID(raw, models.ErrInvalidCategoryID)
		if err != nil {
			return CatalogRequest{}, err
		}
		req.Filter.CategoryID = &id
	}

	req.Filter.Venue = strings.TrimSpace(q.Venue)

	var err error
	if req.Filter.MinPrice, err = parsePriceBound(q.MinPrice); err != nil {
		return CatalogRequest{}, err
	}
	if req.Filter.MaxPrice, err = parsePriceBound(q.MaxPrice); err != nil {
		return CatalogRequest{}, err
	}

	req.Sort = models.EventSort{
		Field: parseSortField(q.SortBy),
		Order: parseSortOrder(q.SortOrder),
	}

	req.Page, req.Limit = c.ParsePaging(q.Page, q.Limit)

	return req, nil
}

// ParsePaging applies the page and limit rules without filters.
// page is clamped so that (page-1)*limit cannot overflow.
func (c Catalog) ParsePaging(page, limit string) (int, int) {
	c = c.defaults()
	l := coercePositive(limit, c.DefaultLimit)
	if l > c.MaxLimit {
		l = c.MaxLimit
	}
	p := coercePositive(page, 1)
	if maxPage := math.MaxInt / l; p > maxPage {
		p = maxPage
	}
	return p, l
}

// coercePositive returns def for an absent value and 1 for anything non-numeric or <= 0.
func coercePositive(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func parsePriceBound(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, models.ErrInvalidPrice
	}
	return &v, nil
}

func parseSortField(raw string) models.SortField {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "price":
		return models.SortByPrice
	default:
		return models.SortByDate
	}
}

func parseSortOrder(raw string) models.SortOrder {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc":
		return models.SortDesc
	default:
		return models.SortAsc
	}
}

// NewPageMeta builds the pagination envelope; pages is 0 for an empty result.
func NewPageMeta(total, page, limit int) models.PageMeta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return models.PageMeta{
		Total:   total,
		Pages:   pages,
		CurPage: page,
		Limit:   limit,
	}
}
