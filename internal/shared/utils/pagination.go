package utils

import (
	"math"
	"strconv"
	"strings"

	"bookstore-api/internal/shared/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is a validated page request.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of items skipped before the page. Pages far
// past any possible result saturate at math.MaxInt.
func (p Pagination) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page and limit query values. Empty values take the
// defaults; anything else must be a positive integer and limit is capped.
func ParsePagination(pageStr, limitStr string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if s := strings.TrimSpace(pageStr); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return p, apperror.Invalid("Page must be a positive integer")
		}
		p.Page = page
	}

	if s := strings.TrimSpace(limitStr); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > MaxLimit {
			return p, apperror.Invalid("Limit must be between 1 and " + strconv.Itoa(MaxLimit))
		}
		p.Limit = limit
	}

	return p, nil
}

// Page slices items for an offset/limit window. A limit of zero returns
// everything from offset on.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}
