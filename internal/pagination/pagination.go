// Package pagination provides DRF-style pagination envelopes for list
// endpoints: page-number and limit/offset strategies, both producing
// {count, next, previous, results}.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	pageParam     = "page"
	pageSizeParam = "page_size"
	limitParam    = "limit"
	offsetParam   = "offset"
)

// Page is the response envelope shared by both strategies.
type Page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []any   `json:"results"`
}

// Paginator slices a full result list according to request query
// parameters.
type Paginator interface {
	Paginate(items []any, r *http.Request) Page
}

// PageNumberPaginator implements page/page_size pagination. Pages are
// 1-indexed; page_size is clamped to MaxPageSize.
type PageNumberPaginator struct {
	PageSize    int
	MaxPageSize int
}

func NewPageNumberPaginator() *PageNumberPaginator {
	return &PageNumberPaginator{PageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

func (p *PageNumberPaginator) pageSize(q url.Values) int {
	size := positiveIntParam(q, pageSizeParam, p.PageSize)
	if size > p.MaxPageSize {
		return p.MaxPageSize
	}
	return size
}

func (p *PageNumberPaginator) Paginate(items []any, r *http.Request) Page {
	q := r.URL.Query()
	size := p.pageSize(q)
	page := positiveIntParam(q, pageParam, 1)

	start := (page - 1) * size
	end := start + size
	results := slice(items, start, end)

	out := Page{Count: len(items), Results: results}
	if end < len(items) {
		out.Next = pageLink(r, map[string]string{
			pageParam:     strconv.Itoa(page + 1),
			pageSizeParam: strconv.Itoa(size),
		})
	}
	if page > 1 {
		out.Previous = pageLink(r, map[string]string{
			pageParam:     strconv.Itoa(page - 1),
			pageSizeParam: strconv.Itoa(size),
		})
	}
	return out
}

// LimitOffsetPaginator implements limit/offset pagination with the same
// envelope.
type LimitOffsetPaginator struct {
	DefaultLimit int
	MaxLimit     int
}

func NewLimitOffsetPaginator() *LimitOffsetPaginator {
	return &LimitOffsetPaginator{DefaultLimit: DefaultPageSize, MaxLimit: MaxPageSize}
}

func (p *LimitOffsetPaginator) Paginate(items []any, r *http.Request) Page {
	q := r.URL.Query()
	limit := positiveIntParam(q, limitParam, p.DefaultLimit)
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	offset := nonNegativeIntParam(q, offsetParam, 0)

	results := slice(items, offset, offset+limit)

	out := Page{Count: len(items), Results: results}
	if offset+limit < len(items) {
		out.Next = pageLink(r, map[string]string{
			limitParam:  strconv.Itoa(limit),
			offsetParam: strconv.Itoa(offset + limit),
		})
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		out.Previous = pageLink(r, map[string]string{
			limitParam:  strconv.Itoa(limit),
			offsetParam: strconv.Itoa(prev),
		})
	}
	return out
}

func slice(items []any, start, end int) []any {
	if start >= len(items) {
		return []any{}
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func positiveIntParam(q url.Values, name string, fallback int) int {
	raw := q.Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func nonNegativeIntParam(q url.Values, name string, fallback int) int {
	raw := q.Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// pageLink rebuilds the request URL with the given query parameters
// replaced, mirroring how DRF renders next/previous links.
func pageLink(r *http.Request, params map[string]string) *string {
	u := *r.URL
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
