package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/validate"
)

const duplicateAccount = "Account with this name already exists"

// Balance is initial + income - expense over the given entries.
func Balance(initial decimal.Decimal, entries []model.Entry) decimal.Decimal {
	balance := initial
	for _, e := range entries {
		switch e.Type {
		case model.Income:
			balance = balance.Add(e.Amount)
		case model.Expense:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}

func (s *Service) withBalance(ctx context.Context, a model.Account) (model.AccountWithBalance, error) {
	entries, err := s.store.Entries(ctx, a.UserID, model.EntryFilter{AccountID: &a.ID})
	if err != nil {
		return model.AccountWithBalance{}, fmt.Errorf("loading account entries: %w", err)
	}
	return model.AccountWithBalance{Account: a, CurrentBalance: Balance(a.InitialBalance, entries)}, nil
}

// ListAccounts returns the user's accounts by name with balances recomputed
// from the full transaction history.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]model.AccountWithBalance, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	entries, err := s.store.Entries(ctx, userID, model.EntryFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	byAccount := make(map[uuid.UUID][]model.Entry)
	for _, e := range entries {
		if e.AccountID != nil {
			byAccount[*e.AccountID] = append(byAccount[*e.AccountID], e)
		}
	}

	out := make([]model.AccountWithBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.AccountWithBalance{Account: a, CurrentBalance: Balance(a.InitialBalance, byAccount[a.ID])})
	}
	return out, nil
}

func (s *Service) GetAccount(ctx context.Context, userID, id uuid.UUID) (model.AccountWithBalance, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return model.AccountWithBalance{}, lookup(err)
	}
	return s.withBalance(ctx, a)
}

func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, in validate.AccountInput) (model.AccountWithBalance, error) {
	if err := validate.Struct(&in); err != nil {
		return model.AccountWithBalance{}, err
	}
	taken, err := s.store.AccountNameTaken(ctx, userID, in.Name, nil)
	if err != nil {
		return model.AccountWithBalance{}, fmt.Errorf("checking account name: %w", err)
	}
	if taken {
		return model.AccountWithBalance{}, apperr.Duplicate(duplicateAccount)
	}

	now := s.now()
	a := model.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           in.Name,
		Type:           in.Type,
		InitialBalance: in.InitialBalance.Round(2),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.AccountWithBalance{}, apperr.Duplicate(duplicateAccount)
		}
		return model.AccountWithBalance{}, fmt.Errorf("creating account: %w", err)
	}
	s.cache.Invalidate(ctx, userID)
	return model.AccountWithBalance{Account: a, CurrentBalance: a.InitialBalance}, nil
}

func (s *Service) UpdateAccount(ctx context.Context, userID, id uuid.UUID, in validate.AccountInput) (model.AccountWithBalance, error) {
	existing, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return model.AccountWithBalance{}, lookup(err)
	}
	if err := validate.Struct(&in); err != nil {
		return model.AccountWithBalance{}, err
	}
	taken, err := s.store.AccountNameTaken(ctx, userID, in.Name, &id)
	if err != nil {
		return model.AccountWithBalance{}, fmt.Errorf("checking account name: %w", err)
	}
	if taken {
		return model.AccountWithBalance{}, apperr.Duplicate(duplicateAccount)
	}

	existing.Name = in.Name
	existing.Type = in.Type
	existing.InitialBalance = in.InitialBalance.Round(2)
	existing.UpdatedAt = s.now()
	if err := s.store.UpdateAccount(ctx, existing); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.AccountWithBalance{}, apperr.Duplicate(duplicateAccount)
		}
		return model.AccountWithBalance{}, lookup(err)
	}
	s.cache.Invalidate(ctx, userID)
	return s.withBalance(ctx, existing)
}

// DeleteAccount removes an account that no transaction references.
func (s *Service) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.store.GetAccount(ctx, userID, id); err != nil {
		return lookup(err)
	}
	n, err := s.store.CountTransactions(ctx, userID, model.EntryFilter{AccountID: &id})
	if err != nil {
		return fmt.Errorf("counting account transactions: %w", err)
	}
	if n > 0 {
		return blocked(n)
	}
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrInUse) {
			// A transaction was linked between the count and the delete.
			n, _ = s.store.CountTransactions(ctx, userID, model.EntryFilter{AccountID: &id})
			return blocked(max(n, 1))
		}
		return lookup(err)
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func blocked(n int) error {
	return apperr.Blockedf("Cannot delete account with %d transaction(s). Please reassign or delete transactions first.", n)
}
