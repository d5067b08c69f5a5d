package helpers

import (
	"net/http"
	"strconv"

	"gatherly/internal/domain"
)

// Guest lists page through the query string: page (1-based) and page_size.
// The cap keeps a single response from carrying an entire large event.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing,
// malformed, or non-positive values fall back to the defaults; page_size is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	return domain.PaginationParams{
		Page:     intQuery(r, "page", DefaultPage, 0),
		PageSize: intQuery(r, "page_size", DefaultPageSize, MaxPageSize),
	}
}

// intQuery parses a positive integer query parameter. A limit of 0 means
// unbounded.
func intQuery(r *http.Request, name string, fallback, limit int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return fallback
	}
	if limit > 0 && v > limit {
		return limit
	}
	return v
}

// PaginationMeta accompanies every paginated list so clients can render
// page controls without a second count request.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta derives the metadata for the current page. TotalPages
// rounds up; a zero pageSize yields zero pages.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		meta.TotalPages = (total + pageSize - 1) / pageSize
	}
	return meta
}
