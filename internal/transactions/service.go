package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source provides the records a seed replaces the collection with.
type Source interface {
	Fetch(ctx context.Context) ([]Transaction, error)
}

// Service answers month-bounded reporting queries on a Store backend.
type Service struct {
	storage       Store
	logger        *zap.Logger
	referenceYear int
}

// NewService creates a new Service. All months are resolved in referenceYear.
func NewService(storage Store, logger *zap.Logger, referenceYear int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage:       storage,
		logger:        logger,
		referenceYear: referenceYear,
	}
}

// ReferenceYear is the year every month selector is resolved in.
func (s *Service) ReferenceYear() int {
	return s.referenceYear
}

// MonthRange resolves a month selector in the reference year.
func (s *Service) MonthRange(month int) (MonthRange, error) {
	return NewMonthRange(s.referenceYear, month)
}

// ListTransactions returns one page of the in-month records matching search.
func (s *Service) ListTransactions(ctx context.Context, month int, search string, page, pageSize int) (TransactionPage, error) {
	r, err := s.MonthRange(month)
	if err != nil {
		return TransactionPage{}, err
	}
	if _, err := Paginate(page, pageSize, 0); err != nil {
		return TransactionPage{}, err
	}

	pred := NewPredicate(search)
	total, err := s.storage.CountInRange(ctx, r, pred)
	if err != nil {
		return TransactionPage{}, storeErr(err)
	}

	w, err := Paginate(page, pageSize, total)
	if err != nil {
		return TransactionPage{}, err
	}

	items, err := s.storage.FindInRange(ctx, r, pred, w.Skip, w.Limit)
	if err != nil {
		return TransactionPage{}, storeErr(err)
	}
	if items == nil {
		items = []Transaction{}
	}

	return TransactionPage{
		Items:      items,
		Total:      total,
		Page:       w.Page,
		PerPage:    w.Limit,
		TotalPages: w.TotalPages,
		HasNext:    w.HasNext(),
		HasPrev:    w.HasPrev(),
	}, nil
}

// GetStatistics computes the sale totals of a month. TotalNotSoldItems
// counts the records dated before the month start.
func (s *Service) GetStatistics(ctx context.Context, month int) (Statistics, error) {
	r, err := s.MonthRange(month)
	if err != nil {
		return Statistics{}, err
	}
	return s.statistics(ctx, r)
}

func (s *Service) statistics(ctx context.Context, r MonthRange) (Statistics, error) {
	sum, err := s.storage.SumField(ctx, r, FieldPrice)
	if err != nil {
		return Statistics{}, storeErr(err)
	}
	sold, err := s.storage.CountInRange(ctx, r, Predicate{})
	if err != nil {
		return Statistics{}, storeErr(err)
	}
	before, err := s.storage.CountBefore(ctx, r.Start)
	if err != nil {
		return Statistics{}, storeErr(err)
	}

	return Statistics{
		TotalSaleAmount:   sum.InexactFloat64(),
		TotalSoldItems:    sold,
		TotalNotSoldItems: before,
	}, nil
}

// GetHistogram buckets the in-month records by price band.
func (s *Service) GetHistogram(ctx context.Context, month int) ([]Bucket, error) {
	r, err := s.MonthRange(month)
	if err != nil {
		return nil, err
	}
	return s.histogram(ctx, r)
}

func (s *Service) histogram(ctx context.Context, r MonthRange) ([]Bucket, error) {
	records, err := s.storage.FindInRange(ctx, r, Predicate{}, 0, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	return Histogram(records), nil
}

// GetCategoryBreakdown counts the in-month records per category.
func (s *Service) GetCategoryBreakdown(ctx context.Context, month int) ([]CategoryCount, error) {
	r, err := s.MonthRange(month)
	if err != nil {
		return nil, err
	}
	return s.categoryBreakdown(ctx, r)
}

func (s *Service) categoryBreakdown(ctx context.Context, r MonthRange) ([]CategoryCount, error) {
	counts, err := s.storage.GroupCount(ctx, r, FieldCategory)
	if err != nil {
		return nil, storeErr(err)
	}
	return CategoryBreakdown(counts), nil
}

// GetDashboard runs every month view concurrently. The first failure
// cancels the remaining queries.
func (s *Service) GetDashboard(ctx context.Context, month int) (Dashboard, error) {
	r, err := s.MonthRange(month)
	if err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.storage.FindInRange(gctx, r, Predicate{}, 0, 0)
		if err != nil {
			return storeErr(err)
		}
		if items == nil {
			items = []Transaction{}
		}
		d.Transactions = items
		return nil
	})
	g.Go(func() error {
		stats, err := s.statistics(gctx, r)
		d.Statistics = stats
		return err
	})
	g.Go(func() error {
		buckets, err := s.histogram(gctx, r)
		d.BarChartData = buckets
		return err
	})
	g.Go(func() error {
		categories, err := s.categoryBreakdown(gctx, r)
		d.PieChartData = categories
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Seed validates records, assigns fresh ids and replaces the whole
// collection. Nothing is written when any record is invalid.
func (s *Service) Seed(ctx context.Context, records []Transaction) error {
	prepared := make([]Transaction, len(records))
	for i, t := range records {
		if err := validateRecord(t); err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrSeedSource, i, err)
		}
		t.ID = uuid.NewString()
		t.DateOfSale = t.DateOfSale.UTC()
		prepared[i] = t
	}

	if err := s.storage.ReplaceAll(ctx, prepared); err != nil {
		s.logger.Error("failed to replace transactions", zap.Int("records", len(prepared)), zap.Error(err))
		return storeErr(err)
	}

	s.logger.Info("transactions seeded", zap.Int("records", len(prepared)))
	return nil
}

// SeedFromSource fetches records from src and seeds the store with them.
func (s *Service) SeedFromSource(ctx context.Context, src Source) error {
	records, err := src.Fetch(ctx)
	if err != nil {
		s.logger.Error("failed to fetch seed data", zap.Error(err))
		if !errors.Is(err, ErrSeedSource) {
			err = fmt.Errorf("%w: %w", ErrSeedSource, err)
		}
		return err
	}
	return s.Seed(ctx, records)
}

func validateRecord(t Transaction) error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return fmt.Errorf("%w: empty title", ErrInvalidRecord)
	case t.Price < 0:
		return fmt.Errorf("%w: negative price %v", ErrInvalidRecord, t.Price)
	case t.DateOfSale.IsZero():
		return fmt.Errorf("%w: missing dateOfSale", ErrInvalidRecord)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
