package model

import "strings"

// DefaultPageSize is used when neither the caller nor the configuration sets a page size
const DefaultPageSize = 10

// MaxPageSize caps per-page requests
const MaxPageSize = 100

// ListQuery holds search and pagination parameters of list endpoints
type ListQuery struct {
	Query   string
	Page    int
	PerPage int
}

// Normalized returns the query with a trimmed lower-cased search term, page >= 1 and
// 1 <= per page <= MaxPageSize.
func (q ListQuery) Normalized(defaultPerPage int) ListQuery {
	q.Query = strings.ToLower(strings.TrimSpace(q.Query))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPageSize
	}
	if q.PerPage > MaxPageSize {
		q.PerPage = MaxPageSize
	}
	return q
}

// Page is one page of a filtered list
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Paginate slices items according to q. q must be normalized. TotalPages is at least 1 so an
// empty result still has a first page.
func Paginate[T any](items []T, q ListQuery) *Page[T] {
	total := len(items)
	totalPages := (total + q.PerPage - 1) / q.PerPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (q.Page - 1) * q.PerPage
	if start > total {
		start = total
	}
	end := min(start+q.PerPage, total)

	return &Page[T]{
		Items:      items[start:end],
		Page:       q.Page,
		PerPage:    q.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
