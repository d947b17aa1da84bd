package transactions

import "errors"

var (
	// ErrInvalidMonth is returned when a month selector is outside 1..12.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidPagination is returned for a non-positive page or page size.
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrStoreUnavailable wraps any failure of the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrSeedSource is returned when the seed source is unreadable or malformed.
	ErrSeedSource = errors.New("seed source error")

	// ErrInvalidRecord marks a seed record that breaks the data model.
	ErrInvalidRecord = errors.New("invalid transaction record")
)
