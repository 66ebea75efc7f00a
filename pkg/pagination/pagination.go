package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds the page window read from the query string. Requested is false
// when the client sent neither page nor per_page, in which case callers return
// the full, unpaginated list.
type Params struct {
	Page      int  `json:"page"`
	PerPage   int  `json:"per_page"`
	Offset    int  `json:"-"`
	Requested bool `json:"-"`
}

func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest reads page and per_page. Invalid values fall back to defaults
// and per_page is capped at MaxPerPage.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if raw, ok := q["page"]; ok {
		p.Requested = true
		if v, err := strconv.Atoi(raw[0]); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw, ok := q["per_page"]; ok {
		p.Requested = true
		if v, err := strconv.Atoi(raw[0]); err == nil && v > 0 {
			p.PerPage = min(v, MaxPerPage)
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Limit returns the LIMIT to apply, or 0 for no limit.
func (p Params) Limit() int {
	if !p.Requested {
		return 0
	}
	return p.PerPage
}

// Result is the paginated list envelope.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func NewResult[T any](data []T, total int, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	pages := (total + perPage - 1) / perPage
	return Result[T]{
		Data:       data,
		TotalCount: total,
		Page:       p.Page,
		PerPage:    perPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
	}
}
