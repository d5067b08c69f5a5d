package domain

// PaginationParams is a normalized 1-based page request, produced by the
// delivery layer and consumed by list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset converts the page number to a row offset for LIMIT/OFFSET queries.
// Page values below 2 map to the start of the list.
func (p PaginationParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
