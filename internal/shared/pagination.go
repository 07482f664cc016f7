package shared

import (
	"net/url"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

// Pagination contains paging parameters for listings.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPagination normalises page and perPage.
func NewPagination(page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	return Pagination{Page: page, PerPage: perPage}
}

// PaginationFromQuery reads page and per_page, ignoring malformed values.
func PaginationFromQuery(q url.Values) Pagination {
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return NewPagination(page, perPage)
}

// Limit is the number of rows per page.
func (p Pagination) Limit() int { return p.PerPage }

// Offset is the number of rows to skip.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PerPage }
