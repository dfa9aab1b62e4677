package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/model"
)

type demoRow struct {
	daysAgo     int
	description string
	amount      string
	category    string
	typ         model.EntryType
	notes       string
}

var demoRows = []demoRow{
	{28, "Monthly Salary", "3200.00", "Salary", model.Income, "November payroll"},
	{25, "Freelance: Landing Page", "850.00", "Freelance", model.Income, "Side project"},
	{24, "Rent - Apartment", "1500.00", "Rent", model.Expense, ""},
	{22, "Utilities - Electricity", "120.45", "Bills & Utilities", model.Expense, ""},
	{20, "Groceries - Whole Foods", "96.72", "Groceries", model.Expense, ""},
	{19, "Subway Pass", "45.00", "Transportation", model.Expense, ""},
	{16, "Movie Night", "28.50", "Entertainment", model.Expense, ""},
	{14, "Groceries - Trader Joes", "64.11", "Groceries", model.Expense, ""},
	{13, "Freelance: Dashboard Charts", "600.00", "Freelance", model.Income, ""},
	{11, "Utilities - Internet", "60.00", "Bills & Utilities", model.Expense, ""},
	{8, "Concert Tickets", "140.00", "Entertainment", model.Expense, ""},
	{6, "Groceries - Costco", "132.39", "Groceries", model.Expense, ""},
	{4, "Rideshare", "22.30", "Transportation", model.Expense, ""},
	{1, "Dinner Out", "54.80", "Food & Dining", model.Expense, ""},
}

// SeedDemo fills the ledger of a user with a month of sample transactions and
// a bank account. It does nothing when the user already has transactions and
// returns the number of transactions written.
func SeedDemo(ctx context.Context, s Store, userID uuid.UUID, now time.Time) (int, error) {
	n, err := s.CountTransactions(ctx, userID, model.EntryFilter{})
	if err != nil {
		return 0, fmt.Errorf("checking transactions count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	categories, err := s.ListCategories(ctx, userID, "")
	if err != nil {
		return 0, fmt.Errorf("listing categories: %w", err)
	}
	byName := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}

	account := model.Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "Demo Checking",
		Type:           model.AccountBank,
		InitialBalance: decimal.NewFromInt(1000),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.CreateAccount(ctx, account); err != nil {
		return 0, fmt.Errorf("seeding demo account: %w", err)
	}

	written := 0
	for _, row := range demoRows {
		c, ok := byName[row.category]
		if !ok || c.Type != row.typ {
			continue
		}
		t := model.Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			AccountID:   &account.ID,
			CategoryID:  c.ID,
			Amount:      decimal.RequireFromString(row.amount),
			Date:        now.AddDate(0, 0, -row.daysAgo),
			Description: row.description,
			Type:        row.typ,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if row.notes != "" {
			notes := row.notes
			t.Notes = &notes
		}
		if err := s.CreateTransaction(ctx, t); err != nil {
			return written, fmt.Errorf("seeding demo transactions: %w", err)
		}
		written++
	}
	return written, nil
}
