// Package dashboard computes a user's financial snapshot.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/store"
)

const (
	// TrendMonths is the length of the monthly trend, current month included.
	TrendMonths = 6
	// RecentCount is the number of recent transactions in a snapshot.
	RecentCount = 5
)

// Cache stores finished snapshots per user.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID, dst any) bool
	Set(ctx context.Context, userID uuid.UUID, v any)
}

type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID, any) bool { return false }
func (noCache) Set(context.Context, uuid.UUID, any)      {}

type Service struct {
	store store.Store
	cache Cache
	now   func() time.Time
}

// NewService returns a service reading from st. cache may be nil.
func NewService(st store.Store, cache Cache) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{store: st, cache: cache, now: time.Now}
}

// MonthRange returns the first instant and the last second of the calendar
// month containing t, in t's location.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, t.Location())
	return start, end
}

// Totals sums income and expense amounts.
func Totals(entries []model.Entry) (income, expense decimal.Decimal) {
	for _, e := range entries {
		switch e.Type {
		case model.Income:
			income = income.Add(e.Amount)
		case model.Expense:
			expense = expense.Add(e.Amount)
		}
	}
	return income, expense
}

// Breakdown groups expense entries by category in first-seen order.
func Breakdown(entries []model.Entry) []model.CategoryBreakdown {
	out := make([]model.CategoryBreakdown, 0)
	index := make(map[uuid.UUID]int)
	for _, e := range entries {
		if e.Type != model.Expense {
			continue
		}
		if i, ok := index[e.CategoryID]; ok {
			out[i].Value = out[i].Value.Add(e.Amount)
			continue
		}
		index[e.CategoryID] = len(out)
		out = append(out, model.CategoryBreakdown{Name: e.CategoryName, Value: e.Amount, Color: e.CategoryColor})
	}
	return out
}

// Snapshot returns the dashboard of userID as of now. Snapshots are served
// from the cache when present.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (model.Dashboard, error) {
	var d model.Dashboard
	if s.cache.Get(ctx, userID, &d) {
		return d, nil
	}

	d, err := s.compute(ctx, userID, s.now())
	if err != nil {
		return model.Dashboard{}, err
	}
	s.cache.Set(ctx, userID, d)
	return d, nil
}

func (s *Service) entries(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Entry, error) {
	return s.store.Entries(ctx, userID, model.EntryFilter{From: &from, To: &to})
}

// compute runs the independent reads concurrently. Each goroutine writes
// only its own slot, so the trend stays oldest first whatever the
// completion order.
func (s *Service) compute(ctx context.Context, userID uuid.UUID, now time.Time) (model.Dashboard, error) {
	var (
		d     model.Dashboard
		trend = make([]model.MonthlyTrend, TrendMonths)
		month []model.Entry
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		all, err := s.store.Entries(gctx, userID, model.EntryFilter{})
		if err != nil {
			return fmt.Errorf("loading all entries: %w", err)
		}
		income, expense := Totals(all)
		d.TotalBalance = income.Sub(expense)
		return nil
	})

	g.Go(func() error {
		start, end := MonthRange(now)
		var err error
		month, err = s.entries(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("loading current month: %w", err)
		}
		return nil
	})

	for i := range TrendMonths {
		g.Go(func() error {
			first := time.Date(now.Year(), now.Month()-time.Month(TrendMonths-1-i), 1, 0, 0, 0, 0, now.Location())
			start, end := MonthRange(first)
			entries, err := s.entries(gctx, userID, start, end)
			if err != nil {
				return fmt.Errorf("loading trend month %s: %w", first.Format("2006-01"), err)
			}
			income, expense := Totals(entries)
			trend[i] = model.MonthlyTrend{Month: first.Month().String()[:3], Income: income, Expenses: expense}
			return nil
		})
	}

	g.Go(func() error {
		recent, _, err := s.store.ListTransactions(gctx, userID, model.TransactionQuery{
			Page:     1,
			PageSize: RecentCount,
			SortBy:   model.SortDate,
			Desc:     true,
		})
		if err != nil {
			return fmt.Errorf("loading recent transactions: %w", err)
		}
		d.RecentTransactions = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Dashboard{}, err
	}

	d.MonthIncome, d.MonthExpenses = Totals(month)
	d.MonthNet = d.MonthIncome.Sub(d.MonthExpenses)
	d.CategoryBreakdown = Breakdown(month)
	d.MonthlyTrend = trend
	if d.RecentTransactions == nil {
		d.RecentTransactions = make([]model.Transaction, 0)
	}
	return d, nil
}
