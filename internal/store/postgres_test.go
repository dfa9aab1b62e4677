package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finance-tracker-backend/internal/model"
)

// PostgresTestSuite runs against a real database named by TEST_DATABASE_URL.
type PostgresTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Postgres
	user  model.User
	food  model.Category
	pay   model.Category
	now   time.Time
}

func (s *PostgresTestSuite) SetupSuite() {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		s.T().Skip("TEST_DATABASE_URL not set")
	}
	s.ctx = context.Background()
	db, err := OpenDB(s.ctx, url, RetryPolicy{Attempts: 1}, nil)
	require.NoError(s.T(), err)
	require.NoError(s.T(), RunMigrations(db))
	s.store = NewPostgres(db)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *PostgresTestSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	s.user = model.User{ID: id, Email: id.String() + "@example.com", Name: "Test", PasswordHash: "x", CreatedAt: s.now}
	s.food = model.Category{ID: uuid.New(), UserID: id, Name: "Food & Dining", Type: model.Expense, Color: "#ef4444", IsDefault: true, CreatedAt: s.now}
	s.pay = model.Category{ID: uuid.New(), UserID: id, Name: "Salary", Type: model.Income, Color: "#22c55e", IsDefault: true, CreatedAt: s.now}
	require.NoError(s.T(), s.store.CreateUser(s.ctx, s.user, []model.Category{s.food, s.pay}))
}

func (s *PostgresTestSuite) TearDownTest() {
	db := s.store.DB()
	_, err := db.ExecContext(s.ctx, `DELETE FROM transactions WHERE user_id = $1`, s.user.ID)
	s.NoError(err)
	_, err = db.ExecContext(s.ctx, `DELETE FROM users WHERE id = $1`, s.user.ID)
	s.NoError(err)
}

func (s *PostgresTestSuite) addTxn(desc string, amount string, typ model.EntryType, date time.Time, account *uuid.UUID) model.Transaction {
	cat := s.food
	if typ == model.Income {
		cat = s.pay
	}
	t := model.Transaction{
		ID: uuid.New(), UserID: s.user.ID, AccountID: account, CategoryID: cat.ID, Amount: decimal.RequireFromString(amount),
		Date: date, Description: desc, Type: typ, CreatedAt: s.now, UpdatedAt: s.now,
	}
	require.NoError(s.T(), s.store.CreateTransaction(s.ctx, t))
	return t
}

func (s *PostgresTestSuite) TestCreateUserIsAtomic() {
	clash := model.User{ID: uuid.New(), Email: "clash-" + s.user.Email, Name: "B", PasswordHash: "x", CreatedAt: s.now}
	dup := model.Category{ID: uuid.New(), UserID: clash.ID, Name: "Same", Type: model.Expense, Color: "#000000"}
	second := dup
	second.ID = uuid.New()

	err := s.store.CreateUser(s.ctx, clash, []model.Category{dup, second})
	assert.ErrorIs(s.T(), err, ErrDuplicate)
	_, err = s.store.UserByEmail(s.ctx, clash.Email)
	assert.ErrorIs(s.T(), err, ErrNotFound, "user row rolled back with its categories")

	err = s.store.CreateUser(s.ctx, model.User{ID: uuid.New(), Email: s.user.Email, Name: "C", PasswordHash: "x"}, nil)
	assert.ErrorIs(s.T(), err, ErrDuplicate)
}

func (s *PostgresTestSuite) TestCategoriesScopedAndFiltered() {
	all, err := s.store.ListCategories(s.ctx, s.user.ID, "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	income, err := s.store.ListCategories(s.ctx, s.user.ID, model.Income)
	require.NoError(s.T(), err)
	require.Len(s.T(), income, 1)
	assert.Equal(s.T(), "Salary", income[0].Name)
	assert.True(s.T(), income[0].IsDefault)

	_, err = s.store.GetCategory(s.ctx, uuid.New(), s.food.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	taken, err := s.store.CategoryNameTaken(s.ctx, s.user.ID, "Salary")
	require.NoError(s.T(), err)
	assert.True(s.T(), taken)
}

func (s *PostgresTestSuite) TestTransactionsRoundTrip() {
	notes := "with friends"
	t := s.addTxn("Lunch", "12.50", model.Expense, s.now, nil)
	t.Notes = &notes
	t.Amount = decimal.RequireFromString("15.25")
	require.NoError(s.T(), s.store.UpdateTransaction(s.ctx, t))

	got, err := s.store.GetTransaction(s.ctx, s.user.ID, t.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Amount.Equal(decimal.RequireFromString("15.25")))
	assert.True(s.T(), got.Date.Equal(s.now))
	require.NotNil(s.T(), got.Notes)
	assert.Equal(s.T(), notes, *got.Notes)
	require.NotNil(s.T(), got.Category)
	assert.Equal(s.T(), "Food & Dining", got.Category.Name)
	assert.Nil(s.T(), got.AccountID)

	_, err = s.store.GetTransaction(s.ctx, uuid.New(), t.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.ErrorIs(s.T(), s.store.DeleteTransaction(s.ctx, uuid.New(), t.ID), ErrNotFound)
	require.NoError(s.T(), s.store.DeleteTransaction(s.ctx, s.user.ID, t.ID))
	_, err = s.store.GetTransaction(s.ctx, s.user.ID, t.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *PostgresTestSuite) TestListTransactions() {
	for i := 0; i < 25; i++ {
		s.addTxn(fmt.Sprintf("Item %02d", i), fmt.Sprint(i+1), model.Expense, s.now.Add(time.Duration(i)*time.Minute), nil)
	}
	s.addTxn("100% juice_bar", "3", model.Expense, s.now.Add(-time.Hour), nil)

	q := model.TransactionQuery{Page: 1, PageSize: 10, SortBy: model.SortDate, Desc: true}
	page, total, err := s.store.ListTransactions(s.ctx, s.user.ID, q)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 26, total)
	require.Len(s.T(), page, 10)
	assert.Equal(s.T(), "Item 24", page[0].Description)
	require.NotNil(s.T(), page[0].Category)

	q = model.TransactionQuery{Page: 3, PageSize: 10, SortBy: model.SortAmount}
	page, _, err = s.store.ListTransactions(s.ctx, s.user.ID, q)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 6)
	assert.True(s.T(), page[0].Amount.Equal(decimal.NewFromInt(20)))

	q = model.TransactionQuery{Page: 1, PageSize: 10, SortBy: model.SortDate, Filter: model.TransactionFilter{Search: "100%"}}
	_, total, err = s.store.ListTransactions(s.ctx, s.user.ID, q)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, total, "LIKE wildcards in the search are literal")

	from, to := s.now, s.now.Add(4*time.Minute)
	q = model.TransactionQuery{Page: 1, PageSize: 10, SortBy: model.SortDate, Filter: model.TransactionFilter{From: &from, To: &to}}
	_, total, err = s.store.ListTransactions(s.ctx, s.user.ID, q)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 5, total)
}

func (s *PostgresTestSuite) TestAccountsAndEntries() {
	account := model.Account{ID: uuid.New(), UserID: s.user.ID, Name: "HDFC", Type: model.AccountBank, InitialBalance: decimal.NewFromInt(100), CreatedAt: s.now, UpdatedAt: s.now}
	require.NoError(s.T(), s.store.CreateAccount(s.ctx, account))

	dup := account
	dup.ID = uuid.New()
	assert.ErrorIs(s.T(), s.store.CreateAccount(s.ctx, dup), ErrDuplicate)

	s.addTxn("Pay", "500", model.Income, s.now, &account.ID)
	s.addTxn("Lunch", "20.5", model.Expense, s.now.Add(time.Hour), &account.ID)
	s.addTxn("Cash", "7", model.Expense, s.now.Add(2*time.Hour), nil)

	entries, err := s.store.Entries(s.ctx, s.user.ID, model.EntryFilter{AccountID: &account.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 2)
	assert.Equal(s.T(), model.Income, entries[0].Type)
	assert.Equal(s.T(), "Food & Dining", entries[1].CategoryName)

	n, err := s.store.CountTransactions(s.ctx, s.user.ID, model.EntryFilter{AccountID: &account.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, n)

	assert.ErrorIs(s.T(), s.store.DeleteAccount(s.ctx, s.user.ID, account.ID), ErrInUse)
	assert.ErrorIs(s.T(), s.store.DeleteAccount(s.ctx, uuid.New(), account.ID), ErrNotFound)
}

func (s *PostgresTestSuite) TestResetToken() {
	hash := "hash-" + s.user.ID.String()
	expires := s.now.Add(15 * time.Minute)
	require.NoError(s.T(), s.store.SetResetToken(s.ctx, s.user.ID, hash, expires))

	_, err := s.store.ConsumeResetToken(s.ctx, hash, expires.Add(time.Second), "late")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	id, err := s.store.ConsumeResetToken(s.ctx, hash, s.now, "new-hash")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.user.ID, id)

	u, err := s.store.UserByID(s.ctx, s.user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new-hash", u.PasswordHash)
	assert.Nil(s.T(), u.ResetTokenHash)

	_, err = s.store.ConsumeResetToken(s.ctx, hash, s.now, "again")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *PostgresTestSuite) TestResetTokenConsumedOnce() {
	hash := "race-" + s.user.ID.String()
	require.NoError(s.T(), s.store.SetResetToken(s.ctx, s.user.ID, hash, s.now.Add(time.Minute)))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.ConsumeResetToken(s.ctx, hash, s.now, fmt.Sprint("pw", i)); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(s.T(), int32(1), wins.Load())
}

func TestPostgresTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}
