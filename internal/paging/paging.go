// Package paging slices ordered result lists into pages.
package paging

import (
	"net/url"
	"strconv"

	"github.com/mohammed-shakir/dggs-ldapi/internal/core/apperr"
)

const (
	DefaultPerPage = 20
	// MaxPerPage bounds a single page; larger values are clamped.
	MaxPerPage = 1000
)

type Params struct {
	Page    int
	PerPage int
	// Limit overrides Page and PerPage when set.
	Limit *int
}

// Parse reads page, per_page and limit from q.
func Parse(q url.Values) (Params, error) {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if v, ok := lookup(q, "page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Params{}, apperr.InvalidParameterValue("page", "must be an integer of 1 or more")
		}
		p.Page = n
	}
	if v, ok := lookup(q, "per_page"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Params{}, apperr.InvalidParameterValue("per_page", "must be an integer of 1 or more")
		}
		p.PerPage = min(n, MaxPerPage)
	}
	if v, ok := lookup(q, "limit"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Params{}, apperr.InvalidParameterValue("limit", "must be an integer of 0 or more")
		}
		n = min(n, MaxPerPage)
		p.Limit = &n
	}
	return p, nil
}

func lookup(q url.Values, key string) (string, bool) {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Page is the resolved window over a list of Total items.
type Page struct {
	Page    int
	PerPage int
	Limit   *int
	Start   int64
	End     int64
	Total   int64
}

// Window clamps the requested slice to [0, total].
func (p Params) Window(total int64) Page {
	var start, end int64
	if p.Limit != nil {
		start, end = 0, int64(*p.Limit)
	} else {
		per := max(int64(p.PerPage), 1)
		pages := (total + per - 1) / per
		// pages past the last one stay empty without multiplying
		if int64(p.Page-1) >= pages {
			start, end = total, total
		} else {
			start = int64(p.Page-1) * per
			end = start + per
		}
	}
	start = clamp(start, 0, total)
	end = clamp(end, start, total)
	return Page{
		Page:    p.Page,
		PerPage: p.PerPage,
		Limit:   p.Limit,
		Start:   start,
		End:     end,
		Total:   total,
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p Page) Len() int64 { return p.End - p.Start }

// LastPage is the final page number at PerPage, at least 1.
func (p Page) LastPage() int {
	if p.Total == 0 || p.PerPage <= 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page) HasNext() bool { return p.Limit == nil && p.Page < p.LastPage() }

func (p Page) HasPrev() bool { return p.Limit == nil && p.Page > 1 }
