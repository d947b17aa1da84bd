package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"api_transactions/internal/transactions"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const insertBatchSize = 200

// transactionRow is the persisted form of a transaction. Dates are kept as
// UTC Unix microseconds so range filters compare integers.
type transactionRow struct {
	ID          string  `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"not null;default:''"`
	Price       float64 `gorm:"not null"`
	PriceText   string  `gorm:"not null"`
	DateOfSale  int64   `gorm:"not null;index"`
	Category    string  `gorm:"not null;default:'';index"`
}

func (transactionRow) TableName() string { return "transactions" }

func toRow(t transactions.Transaction) transactionRow {
	return transactionRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Price:       t.Price,
		PriceText:   transactions.PriceText(t.Price),
		DateOfSale:  t.DateOfSale.UTC().UnixMicro(),
		Category:    t.Category,
	}
}

func (r transactionRow) toTransaction() transactions.Transaction {
	return transactions.Transaction{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		DateOfSale:  time.UnixMicro(r.DateOfSale).UTC(),
		Category:    r.Category,
	}
}

var groupColumns = map[transactions.Field]string{
	transactions.FieldCategory: "category",
}

var _ transactions.Store = (*TransactionStore)(nil)

// TransactionStore implements transactions.Store on top of gorm.
type TransactionStore struct {
	db *gorm.DB
}

// NewTransactionStore wraps an open, migrated database.
func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) inRange(ctx context.Context, r transactions.MonthRange, p transactions.Predicate) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&transactionRow{}).
		Where("date_of_sale >= ? AND date_of_sale < ?", r.Start.UTC().UnixMicro(), r.End.UTC().UnixMicro())
	if p.IsEmpty() {
		return q
	}

	pattern := "%" + escapeLike(p.Needle()) + "%"
	return q.Where(
		`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR price_text LIKE ? ESCAPE '\')`,
		pattern, pattern, pattern,
	)
}

// FindInRange returns matching records ordered by date of sale, then id.
func (s *TransactionStore) FindInRange(ctx context.Context, r transactions.MonthRange, p transactions.Predicate, skip, limit int) ([]transactions.Transaction, error) {
	q := s.inRange(ctx, r, p).Order("date_of_sale ASC, id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []transactionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}

	out := make([]transactions.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.toTransaction()
	}
	return out, nil
}

func (s *TransactionStore) CountInRange(ctx context.Context, r transactions.MonthRange, p transactions.Predicate) (int, error) {
	var n int64
	if err := s.inRange(ctx, r, p).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}

func (s *TransactionStore) SumField(ctx context.Context, r transactions.MonthRange, field transactions.Field) (decimal.Decimal, error) {
	if field != transactions.FieldPrice {
		return decimal.Zero, fmt.Errorf("%w: sum %q", transactions.ErrUnsupportedField, field)
	}

	var sum float64
	if err := s.inRange(ctx, r, transactions.Predicate{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum prices: %w", err)
	}
	return decimal.NewFromFloat(sum), nil
}

func (s *TransactionStore) CountBefore(ctx context.Context, t time.Time) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&transactionRow{}).
		Where("date_of_sale < ?", t.UTC().UnixMicro()).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count transactions before %s: %w", t.Format(time.RFC3339), err)
	}
	return int(n), nil
}

func (s *TransactionStore) GroupCount(ctx context.Context, r transactions.MonthRange, field transactions.Field) (map[string]int, error) {
	col, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: group by %q", transactions.ErrUnsupportedField, field)
	}

	var groups []struct {
		Value string
		Count int
	}
	if err := s.inRange(ctx, r, transactions.Predicate{}).
		Select(col + " AS value, COUNT(*) AS count").
		Group(col).
		Scan(&groups).Error; err != nil {
		return nil, fmt.Errorf("group transactions by %s: %w", col, err)
	}

	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Value] = g.Count
	}
	return counts, nil
}

// ReplaceAll deletes every row and inserts records in one database transaction.
func (s *TransactionStore) ReplaceAll(ctx context.Context, records []transactions.Transaction) error {
	rows := make([]transactionRow, len(records))
	for i, t := range records {
		rows[i] = toRow(t)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&transactionRow{}).Error; err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert transactions: %w", err)
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
