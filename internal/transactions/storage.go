package transactions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedField is returned when a store cannot sum or group by a field.
var ErrUnsupportedField = errors.New("unsupported field")

// Field names a Transaction attribute a store can aggregate over.
type Field string

const (
	FieldPrice    Field = "price"
	FieldCategory Field = "category"
)

// Store is the record store the reporting layer queries.
// A limit of 0 in FindInRange means no limit.
type Store interface {
	FindInRange(ctx context.Context, r MonthRange, p Predicate, skip, limit int) ([]Transaction, error)
	CountInRange(ctx context.Context, r MonthRange, p Predicate) (int, error)
	SumField(ctx context.Context, r MonthRange, field Field) (decimal.Decimal, error)
	CountBefore(ctx context.Context, t time.Time) (int, error)
	GroupCount(ctx context.Context, r MonthRange, field Field) (map[string]int, error)
	ReplaceAll(ctx context.Context, records []Transaction) error
}

// LocalStorage provides an in-memory implementation of Store.
type LocalStorage struct {
	mu      sync.RWMutex
	records []Transaction
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// FindInRange returns matching records ordered by date of sale, then id.
func (l *LocalStorage) FindInRange(_ context.Context, r MonthRange, p Predicate, skip, limit int) ([]Transaction, error) {
	matched := l.filter(r, p)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DateOfSale.Equal(matched[j].DateOfSale) {
			return matched[i].DateOfSale.Before(matched[j].DateOfSale)
		}
		return matched[i].ID < matched[j].ID
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []Transaction{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (l *LocalStorage) CountInRange(_ context.Context, r MonthRange, p Predicate) (int, error) {
	return len(l.filter(r, p)), nil
}

func (l *LocalStorage) SumField(_ context.Context, r MonthRange, field Field) (decimal.Decimal, error) {
	if field != FieldPrice {
		return decimal.Zero, fmt.Errorf("%w: sum %q", ErrUnsupportedField, field)
	}
	return SumPrices(l.filter(r, Predicate{})), nil
}

func (l *LocalStorage) CountBefore(_ context.Context, t time.Time) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, rec := range l.records {
		if rec.DateOfSale.Before(t) {
			n++
		}
	}
	return n, nil
}

func (l *LocalStorage) GroupCount(_ context.Context, r MonthRange, field Field) (map[string]int, error) {
	if field != FieldCategory {
		return nil, fmt.Errorf("%w: group by %q", ErrUnsupportedField, field)
	}

	counts := map[string]int{}
	for _, t := range l.filter(r, Predicate{}) {
		counts[t.Category]++
	}
	return counts, nil
}

// ReplaceAll swaps the whole collection for records.
func (l *LocalStorage) ReplaceAll(_ context.Context, records []Transaction) error {
	ids := make(map[string]struct{}, len(records))
	for _, t := range records {
		if t.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidRecord)
		}
		if _, dup := ids[t.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, t.ID)
		}
		ids[t.ID] = struct{}{}
	}

	next := make([]Transaction, len(records))
	copy(next, records)

	l.mu.Lock()
	l.records = next
	l.mu.Unlock()
	return nil
}

func (l *LocalStorage) filter(r MonthRange, p Predicate) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Transaction, 0)
	for _, t := range l.records {
		if r.Contains(t.DateOfSale) && p.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
