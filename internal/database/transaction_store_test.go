package database

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"api_transactions/internal/config"
	"api_transactions/internal/transactions"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TransactionStore {
	t.Helper()

	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewTransactionStore(db)
}

func sale(id string, price float64, when time.Time, category, title string) transactions.Transaction {
	return transactions.Transaction{
		ID:          id,
		Title:       title,
		Description: "desc " + title,
		Price:       price,
		DateOfSale:  when,
		Category:    category,
	}
}

func fixture() []transactions.Transaction {
	return []transactions.Transaction{
		sale("1", 50, time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC), "A", "Backpack"),
		sale("2", 150, time.Date(2023, 3, 14, 8, 0, 0, 0, time.UTC), "A", "Slim_Fit 100%"),
		sale("3", 950, time.Date(2023, 3, 31, 23, 59, 59, 0, time.UTC), "B", "Monitor"),
		sale("4", 329.85, time.Date(2023, 2, 28, 8, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)), "C", "Ring"),
		sale("5", 10, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), "B", "Cable"),
	}
}

func march(t *testing.T) transactions.MonthRange {
	t.Helper()
	r, err := transactions.NewMonthRange(2023, 3)
	require.NoError(t, err)
	return r
}

func TestTransactionStore_Aggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceAll(ctx, fixture()))

	n, err := s.CountInRange(ctx, march(t), transactions.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sum, err := s.SumField(ctx, march(t), transactions.FieldPrice)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(1150)), sum.String())

	before, err := s.CountBefore(ctx, march(t).Start)
	require.NoError(t, err)
	assert.Equal(t, 1, before)

	groups, err := s.GroupCount(ctx, march(t), transactions.FieldCategory)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, groups)
}

func TestTransactionStore_EmptyRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sum, err := s.SumField(ctx, march(t), transactions.FieldPrice)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	groups, err := s.GroupCount(ctx, march(t), transactions.FieldCategory)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestTransactionStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceAll(ctx, fixture()))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"95", []string{"3"}},
		{"5", []string{"1", "2", "3"}},
		{"BACKPACK", []string{"1"}},
		{"desc mon", []string{"3"}},
		{"_", []string{"2"}},
		{"%", []string{"2"}},
		{"329", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.FindInRange(ctx, march(t), transactions.NewPredicate(tt.query), 0, 0)
			require.NoError(t, err)

			var ids []string
			for _, tx := range got {
				ids = append(ids, tx.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTransactionStore_FindInRangeWindowAndRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceAll(ctx, fixture()))

	page, err := s.FindInRange(ctx, march(t), transactions.Predicate{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)

	got := page[0]
	assert.Equal(t, "2", got.ID)
	assert.Equal(t, "Slim_Fit 100%", got.Title)
	assert.Equal(t, 150.0, got.Price)
	assert.True(t, got.DateOfSale.Equal(time.Date(2023, 3, 14, 8, 0, 0, 0, time.UTC)))
}

func TestTransactionStore_ReplaceAllReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceAll(ctx, fixture()))
	require.NoError(t, s.ReplaceAll(ctx, fixture()[:1]))

	n, err := s.CountBefore(ctx, time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.ReplaceAll(ctx, nil))
	n, err = s.CountBefore(ctx, time.Date(3000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransactionStore_DuplicateIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceAll(ctx, fixture()))

	dup := fixture()
	dup[1].ID = dup[0].ID
	assert.Error(t, s.ReplaceAll(ctx, dup))

	n, err := s.CountInRange(ctx, march(t), transactions.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTransactionStore_UnsupportedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SumField(ctx, march(t), transactions.FieldCategory)
	assert.ErrorIs(t, err, transactions.ErrUnsupportedField)

	_, err = s.GroupCount(ctx, march(t), transactions.FieldPrice)
	assert.ErrorIs(t, err, transactions.ErrUnsupportedField)

	_, err = s.GroupCount(ctx, march(t), transactions.Field("title"))
	assert.ErrorIs(t, err, transactions.ErrUnsupportedField)
}

func TestTransactionStore_BacksService(t *testing.T) {
	svc := transactions.NewService(newTestStore(t), nil, 2023)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, fixture()))

	stats, err := svc.GetStatistics(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, transactions.Statistics{TotalSaleAmount: 1150, TotalSoldItems: 3, TotalNotSoldItems: 1}, stats)

	buckets, err := svc.GetHistogram(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 1, buckets[9].Count)
}

func TestTransactionStore_PageFarPastTheEndIsEmpty(t *testing.T) {
	svc := transactions.NewService(newTestStore(t), nil, 2023)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, fixture()))

	page, err := svc.ListTransactions(ctx, 3, "", math.MaxInt64/2+3, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)

	page, err = svc.ListTransactions(ctx, 3, "", 1, math.MaxInt64)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPages)
}

func TestInit_AppliesPragmas(t *testing.T) {
	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "pragma.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	var mode string
	require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode;").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestInit_FailsOnUnopenablePath(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(config.DatabaseConfig{Path: dir})
	assert.Error(t, err)
}
