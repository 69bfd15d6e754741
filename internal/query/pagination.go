package query

import "github.com/kodelink/task-mcp/internal/errs"

// Pagination is the validated limit/offset pair every listing/search/
// relationship endpoint accepts (spec §4.6: "limit (default 100, range
// 1..1000) and offset (>= 0)").
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination validates rawLimit/rawOffset, applying the default limit
// of 100 when rawLimit is zero. Out-of-range values fail PaginationInvalid.
func ParsePagination(rawLimit, rawOffset int) (Pagination, error) {
	limit := rawLimit
	if limit == 0 {
		limit = 100
	}
	if limit < 1 || limit > 1000 {
		return Pagination{}, errs.New(errs.PaginationInvalid, "limit must be in [1, 1000], got %d", limit)
	}
	if rawOffset < 0 {
		return Pagination{}, errs.New(errs.PaginationInvalid, "offset must be >= 0, got %d", rawOffset)
	}
	return Pagination{Limit: limit, Offset: rawOffset}, nil
}

// Page slices items according to p, tolerating an offset past the end of
// items (returns an empty slice, not an error — spec §8 property 8 only
// requires the concatenation property across valid pages).
func Page[T any](items []T, p Pagination) []T {
	total := len(items)
	if p.Offset >= total {
		return items[total:total]
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return items[p.Offset:end]
}

// Envelope is the pagination response wrapper spec §4.6 mandates for every
// paginated endpoint.
type Envelope[T any] struct {
	TotalCount   int `json:"total_count"`
	ReturnedCount int `json:"returned_count"`
	Limit        int `json:"limit"`
	Offset       int `json:"offset"`
	Items        []T `json:"items"`
}

// Paginate builds the envelope for items (the full, filtered-but-unpaginated
// result set) at p.
func Paginate[T any](items []T, p Pagination) Envelope[T] {
	page := Page(items, p)
	return Envelope[T]{
		TotalCount:    len(items),
		ReturnedCount: len(page),
		Limit:         p.Limit,
		Offset:        p.Offset,
		Items:         page,
	}
}
