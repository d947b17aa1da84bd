package transactions

import (
	"fmt"
	"time"
)

// MonthRange is the half-open interval [Start, End) covering one calendar month.
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// NewMonthRange returns the range of the given month in the reference year.
// December rolls over into January of the following year.
func NewMonthRange(year, month int) (MonthRange, error) {
	if month < 1 || month > 12 {
		return MonthRange{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// Contains reports whether t falls inside the range.
func (r MonthRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
