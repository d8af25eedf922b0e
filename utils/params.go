package utils

import (
	"math"
	"net/http"
	"strconv"
)

type Pagination struct {
	TotalSize  int64 `json:"totalSize"`
	TotalPages int64 `json:"totalPages"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
}

// NewPagination derives the page envelope from a total count.
func NewPagination(total int64, page, limit int) Pagination {
	pages := int64(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		TotalSize:  total,
		TotalPages: pages,
		PageNumber: page,
		PageSize:   limit,
	}
}

// ParsePagination reads ?page= and ?limit= with sane defaults.
func ParsePagination(r *http.Request) (page, limit int) {
	q := r.URL.Query()

	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
