package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/validate"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps the row offset within a Postgres integer.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ListParams are the raw query parameters of a transaction listing.
type ListParams struct {
	Page       string
	PageSize   string
	Search     string
	Type       string
	CategoryID string
	AccountID  string
	StartDate  string
	EndDate    string
	SortBy     string
	SortOrder  string
}

// Query normalises p. Pages are clamped to positive bounds and unknown sort
// keys fall back to date, newest first. A bare endDate covers the whole day.
func (p ListParams) Query() (model.TransactionQuery, error) {
	q := model.TransactionQuery{
		Page:     1,
		PageSize: DefaultPageSize,
		SortBy:   model.SortField(p.SortBy),
		Desc:     !strings.EqualFold(p.SortOrder, "asc"),
	}
	if n, err := strconv.Atoi(p.Page); err == nil && n > 1 {
		q.Page = min(n, MaxPage)
	}
	if n, err := strconv.Atoi(p.PageSize); err == nil && n > 0 {
		q.PageSize = min(n, MaxPageSize)
	}
	if !q.SortBy.Valid() {
		q.SortBy = model.SortDate
	}

	f := &q.Filter
	f.Search = strings.TrimSpace(p.Search)
	if p.Type != "" {
		f.Type = model.EntryType(p.Type)
		if !f.Type.Valid() {
			return q, apperr.Invalid("Type must be INCOME or EXPENSE")
		}
	}
	if p.CategoryID != "" {
		id, err := uuid.Parse(p.CategoryID)
		if err != nil {
			return q, apperr.Invalid("Invalid category")
		}
		f.CategoryID = &id
	}
	if p.AccountID != "" {
		id, err := uuid.Parse(p.AccountID)
		if err != nil {
			return q, apperr.Invalid("Invalid account")
		}
		f.AccountID = &id
	}
	if p.StartDate != "" {
		from, err := validate.ParseDate(p.StartDate)
		if err != nil {
			return q, apperr.Invalid("Invalid start date")
		}
		f.From = &from
	}
	if p.EndDate != "" {
		to, err := validate.ParseDate(p.EndDate)
		if err != nil {
			return q, apperr.Invalid("Invalid end date")
		}
		if validate.IsDateOnly(p.EndDate) {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = &to
	}
	return q, nil
}

// ListTransactions returns one page of the user's transactions, each with
// its category.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, p ListParams) (model.Page[model.Transaction], error) {
	q, err := p.Query()
	if err != nil {
		return model.Page[model.Transaction]{}, err
	}
	rows, total, err := s.store.ListTransactions(ctx, userID, q)
	if err != nil {
		return model.Page[model.Transaction]{}, fmt.Errorf("listing transactions: %w", err)
	}
	return model.NewPage(rows, total, q.Page, q.PageSize), nil
}

func (s *Service) GetTransaction(ctx context.Context, userID, id uuid.UUID) (model.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return model.Transaction{}, lookup(err)
	}
	return t, nil
}

// resolve validates in and checks that its category and account belong to
// the user. The returned transaction has every payload field filled in.
func (s *Service) resolve(ctx context.Context, userID uuid.UUID, in validate.TransactionInput) (model.Transaction, error) {
	if err := validate.Struct(&in); err != nil {
		return model.Transaction{}, err
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return model.Transaction{}, apperr.Invalid("Amount must be positive")
	}
	date, err := validate.ParseDate(in.Date)
	if err != nil {
		return model.Transaction{}, apperr.Invalid("Invalid date")
	}

	categoryID, err := uuid.Parse(in.CategoryID)
	if err != nil {
		return model.Transaction{}, apperr.Invalid("Category not found")
	}
	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Transaction{}, apperr.Invalid("Category not found")
		}
		return model.Transaction{}, fmt.Errorf("loading category: %w", err)
	}
	if category.Type != in.Type {
		return model.Transaction{}, apperr.Invalid("Category type does not match transaction type")
	}

	t := model.Transaction{
		UserID:      userID,
		CategoryID:  category.ID,
		Amount:      amount,
		Date:        date,
		Description: in.Description,
		Type:        in.Type,
		Notes:       in.Notes,
		Category:    &category,
	}
	if in.AccountID != nil && *in.AccountID != "" {
		accountID, err := uuid.Parse(*in.AccountID)
		if err != nil {
			return model.Transaction{}, apperr.Invalid("Account not found")
		}
		if _, err := s.store.GetAccount(ctx, userID, accountID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return model.Transaction{}, apperr.Invalid("Account not found")
			}
			return model.Transaction{}, fmt.Errorf("loading account: %w", err)
		}
		t.AccountID = &accountID
	}
	return t, nil
}

// CreateTransaction records a transaction. A category or account the user
// does not own is rejected before anything is written.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, in validate.TransactionInput) (model.Transaction, error) {
	t, err := s.resolve(ctx, userID, in)
	if err != nil {
		return model.Transaction{}, err
	}
	now := s.now()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return model.Transaction{}, fmt.Errorf("creating transaction: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return t, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, in validate.TransactionInput) (model.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return model.Transaction{}, lookup(err)
	}
	t, err := s.resolve(ctx, userID, in)
	if err != nil {
		return model.Transaction{}, err
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = s.now()
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return model.Transaction{}, lookup(err)
	}
	s.cache.Invalidate(ctx, userID)
	return t, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return lookup(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
