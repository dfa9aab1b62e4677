package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/store"
)

type mapCache struct {
	entries map[uuid.UUID]model.Dashboard
	sets    int
}

func (c *mapCache) Get(_ context.Context, userID uuid.UUID, dst any) bool {
	d, ok := c.entries[userID]
	if ok {
		*dst.(*model.Dashboard) = d
	}
	return ok
}

func (c *mapCache) Set(_ context.Context, userID uuid.UUID, v any) {
	c.sets++
	c.entries[userID] = v.(model.Dashboard)
}

type DashboardTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.Memory
	svc    *Service
	user   uuid.UUID
	food   model.Category
	rent   model.Category
	salary model.Category
	now    time.Time
}

func (s *DashboardTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemory()
	s.svc = NewService(s.store, nil)
	s.now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)
	s.svc.now = func() time.Time { return s.now }

	s.user = uuid.New()
	s.food = model.Category{ID: uuid.New(), UserID: s.user, Name: "Food & Dining", Type: model.Expense, Color: "#ef4444"}
	s.rent = model.Category{ID: uuid.New(), UserID: s.user, Name: "Rent", Type: model.Expense, Color: "#0ea5e9"}
	s.salary = model.Category{ID: uuid.New(), UserID: s.user, Name: "Salary", Type: model.Income, Color: "#22c55e"}
	require.NoError(s.T(), s.store.CreateUser(s.ctx, model.User{ID: s.user, Email: "u@example.com"},
		[]model.Category{s.food, s.rent, s.salary}))
}

func (s *DashboardTestSuite) add(c model.Category, amount string, date time.Time, account *uuid.UUID) {
	t := model.Transaction{
		ID: uuid.New(), UserID: s.user, AccountID: account, CategoryID: c.ID, Amount: decimal.RequireFromString(amount),
		Date: date, Description: c.Name, Type: c.Type, CreatedAt: s.now, UpdatedAt: s.now,
	}
	require.NoError(s.T(), s.store.CreateTransaction(s.ctx, t))
}

func (s *DashboardTestSuite) TestEmptyLedger() {
	d, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	assert.True(s.T(), d.TotalBalance.IsZero())
	assert.NotNil(s.T(), d.CategoryBreakdown)
	assert.NotNil(s.T(), d.RecentTransactions)
	require.Len(s.T(), d.MonthlyTrend, 6)
	months := make([]string, 0, 6)
	for _, m := range d.MonthlyTrend {
		months = append(months, m.Month)
	}
	assert.Equal(s.T(), []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, months)
}

func (s *DashboardTestSuite) TestMonthTotalsAndBreakdown() {
	s.add(s.salary, "3000", time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), nil)
	s.add(s.rent, "1200", time.Date(2025, 3, 2, 9, 0, 0, 0, time.Local), nil)
	s.add(s.food, "40.10", time.Date(2025, 3, 3, 9, 0, 0, 0, time.Local), nil)
	s.add(s.food, "9.90", time.Date(2025, 3, 31, 23, 59, 59, 0, time.Local), nil)
	s.add(s.food, "100", time.Date(2025, 2, 28, 23, 0, 0, 0, time.Local), nil)
	s.add(s.food, "7", time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local), nil)

	d, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "3000.00", d.MonthIncome.StringFixed(2))
	assert.Equal(s.T(), "1250.00", d.MonthExpenses.StringFixed(2))
	assert.Equal(s.T(), "1750.00", d.MonthNet.StringFixed(2))

	require.Len(s.T(), d.CategoryBreakdown, 2)
	assert.Equal(s.T(), "Rent", d.CategoryBreakdown[0].Name, "first encountered category comes first")
	assert.Equal(s.T(), "Food & Dining", d.CategoryBreakdown[1].Name)
	assert.Equal(s.T(), "50.00", d.CategoryBreakdown[1].Value.StringFixed(2))
	assert.Equal(s.T(), "#ef4444", d.CategoryBreakdown[1].Color)

	assert.Equal(s.T(), "100.00", d.MonthlyTrend[4].Expenses.StringFixed(2))
	assert.Equal(s.T(), "Feb", d.MonthlyTrend[4].Month)

	require.Len(s.T(), d.RecentTransactions, 5)
	assert.Equal(s.T(), "7", d.RecentTransactions[0].Amount.String(), "most recent first")
	require.NotNil(s.T(), d.RecentTransactions[0].Category)
}

func (s *DashboardTestSuite) TestTotalBalanceIgnoresInitialBalances() {
	account := model.Account{ID: uuid.New(), UserID: s.user, Name: "HDFC", Type: model.AccountBank, InitialBalance: decimal.NewFromInt(10000)}
	require.NoError(s.T(), s.store.CreateAccount(s.ctx, account))
	s.add(s.salary, "500", s.now, &account.ID)
	s.add(s.food, "120", s.now, &account.ID)

	d, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "380.00", d.TotalBalance.StringFixed(2))
}

func (s *DashboardTestSuite) TestTrendSumsMatchWindow() {
	dates := []time.Time{
		time.Date(2024, 9, 30, 12, 0, 0, 0, time.Local), // before the window
		time.Date(2024, 10, 1, 0, 0, 0, 0, time.Local),
		time.Date(2024, 12, 15, 0, 0, 0, 0, time.Local),
		time.Date(2025, 1, 31, 23, 0, 0, 0, time.Local),
		time.Date(2025, 3, 15, 8, 0, 0, 0, time.Local),
	}
	for _, date := range dates {
		s.add(s.salary, "100", date, nil)
		s.add(s.food, "10", date, nil)
	}

	d, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	income, expenses := decimal.Zero, decimal.Zero
	for _, m := range d.MonthlyTrend {
		income = income.Add(m.Income)
		expenses = expenses.Add(m.Expenses)
	}
	assert.Equal(s.T(), "400", income.String())
	assert.Equal(s.T(), "40", expenses.String())
	assert.Equal(s.T(), "100", d.MonthlyTrend[0].Income.String())
}

func (s *DashboardTestSuite) TestLunchScenario() {
	before, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)

	s.add(s.food, "500", s.now, nil)

	after, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	assert.True(s.T(), after.MonthExpenses.Sub(before.MonthExpenses).Equal(decimal.NewFromInt(500)))
	require.Len(s.T(), after.CategoryBreakdown, 1)
	assert.Equal(s.T(), "Food & Dining", after.CategoryBreakdown[0].Name)
	assert.True(s.T(), after.CategoryBreakdown[0].Value.Equal(decimal.NewFromInt(500)))
}

func (s *DashboardTestSuite) TestSnapshotIsCached() {
	c := &mapCache{entries: make(map[uuid.UUID]model.Dashboard)}
	s.svc.cache = c

	_, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	s.add(s.food, "500", s.now, nil)

	d, err := s.svc.Snapshot(s.ctx, s.user)
	require.NoError(s.T(), err)
	assert.True(s.T(), d.MonthExpenses.IsZero(), "served from cache until invalidated")
	assert.Equal(s.T(), 1, c.sets)
}

func TestDashboardTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardTestSuite))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), end)

	start, end = MonthRange(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), end)
}
