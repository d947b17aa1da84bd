package transactions

import "fmt"

// DefaultPageSize is used when the caller does not pick one.
const DefaultPageSize = 10

// Window is the skip/limit slice of a result set for one page.
type Window struct {
	Page       int
	Skip       int
	Limit      int
	TotalPages int
}

// Paginate computes the window for page over totalCount records.
// Pages past the end are valid and simply select nothing: their Skip is
// clamped to totalCount so the multiplication cannot overflow.
func Paginate(page, pageSize, totalCount int) (Window, error) {
	if page < 1 {
		return Window{}, fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidPagination, page)
	}
	if pageSize < 1 {
		return Window{}, fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidPagination, pageSize)
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := totalCount / pageSize
	if totalCount%pageSize != 0 {
		totalPages++
	}

	skip := totalCount
	if page <= totalPages {
		skip = (page - 1) * pageSize
	}

	return Window{
		Page:       page,
		Skip:       skip,
		Limit:      pageSize,
		TotalPages: totalPages,
	}, nil
}

// HasNext reports whether a following page exists.
func (w Window) HasNext() bool {
	return w.Page < w.TotalPages
}

// HasPrev reports whether a preceding page exists.
func (w Window) HasPrev() bool {
	return w.Page > 1
}
