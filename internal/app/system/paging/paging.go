// Package paging parses and validates page-number pagination and computes
// page counts for list endpoints.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
)

// DefaultLimit is the page size used when the client does not send one.
const DefaultLimit = 10

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Params is a validated 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Parse reads "page" and "limit" from the query string. Missing values fall
// back to page 1 and defaultLimit; present values must be positive integers
// and limit must not exceed MaxLimit.
func Parse(r *http.Request, defaultLimit int) (Params, error) {
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	page, err := parsePositive(query.Get(r, "page"), 1, "page")
	if err != nil {
		return Params{}, err
	}
	limit, err := parsePositive(query.Get(r, "limit"), defaultLimit, "limit")
	if err != nil {
		return Params{}, err
	}
	p := Params{Page: page, Limit: limit}
	return p, p.Validate()
}

func parsePositive(s string, def int, field string) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.ValidationFailed(field, field+" must be a positive integer")
	}
	return n, nil
}

// Validate checks page ≥ 1 and 1 ≤ limit ≤ MaxLimit.
func (p Params) Validate() error {
	if p.Page < 1 {
		return apperr.ValidationFailed("page", "page must be a positive integer")
	}
	if p.Limit < 1 {
		return apperr.ValidationFailed("limit", "limit must be a positive integer")
	}
	if p.Limit > MaxLimit {
		return apperr.ValidationFailed("limit", "limit must be at most "+strconv.Itoa(MaxLimit))
	}
	return nil
}

// Skip returns the number of rows before the first row of the page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// PageCount returns ceil(total/limit), and 1 when there are no rows so a
// client always has at least one (empty) page to show.
func PageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Window returns the [start, end) bounds of the page within n rows, clamped
// to n. A page past the end yields start == end.
func (p Params) Window(n int) (start, end int) {
	start64 := p.Skip()
	if start64 >= int64(n) {
		return n, n
	}
	start = int(start64)
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
