package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	records := marchFixture()
	for i := range records {
		records[i].ID = string(rune('a' + i))
	}
	l := NewLocalStorage()
	require.NoError(t, l.ReplaceAll(context.Background(), records))
	return l
}

func TestLocalStorage_RangeQueries(t *testing.T) {
	l := seededLocalStorage(t)
	ctx := context.Background()
	march, err := NewMonthRange(2023, 3)
	require.NoError(t, err)

	n, err := l.CountInRange(ctx, march, Predicate{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = l.CountInRange(ctx, march, NewPredicate("inch"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sum, err := l.SumField(ctx, march, FieldPrice)
	require.NoError(t, err)
	assert.Equal(t, "1150", sum.String())

	before, err := l.CountBefore(ctx, march.Start)
	require.NoError(t, err)
	assert.Equal(t, 2, before)

	groups, err := l.GroupCount(ctx, march, FieldCategory)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, groups)
}

func TestLocalStorage_FindInRangeWindow(t *testing.T) {
	l := seededLocalStorage(t)
	ctx := context.Background()
	march, err := NewMonthRange(2023, 3)
	require.NoError(t, err)

	all, err := l.FindInRange(ctx, march, Predicate{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].DateOfSale.Before(all[1].DateOfSale))

	page, err := l.FindInRange(ctx, march, Predicate{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	past, err := l.FindInRange(ctx, march, Predicate{}, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, past)

	negative, err := l.FindInRange(ctx, march, Predicate{}, -4, 2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], negative)
}

func TestLocalStorage_UnsupportedFields(t *testing.T) {
	l := NewLocalStorage()
	ctx := context.Background()
	r := MonthRange{Start: time.Unix(0, 0), End: time.Now()}

	_, err := l.SumField(ctx, r, FieldCategory)
	assert.ErrorIs(t, err, ErrUnsupportedField)

	_, err = l.GroupCount(ctx, r, FieldPrice)
	assert.ErrorIs(t, err, ErrUnsupportedField)

	_, err = l.GroupCount(ctx, r, Field("title"))
	assert.ErrorIs(t, err, ErrUnsupportedField)
}

func TestLocalStorage_ReplaceAllRejectsBadIDs(t *testing.T) {
	l := seededLocalStorage(t)
	ctx := context.Background()

	err := l.ReplaceAll(ctx, []Transaction{{ID: "x"}, {ID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = l.ReplaceAll(ctx, []Transaction{{ID: ""}})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	n, err := l.CountBefore(ctx, time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
