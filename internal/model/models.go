package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType tells whether money comes in or goes out. It is shared by
// categories and transactions.
type EntryType string

const (
	Income  EntryType = "INCOME"
	Expense EntryType = "EXPENSE"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// AccountType classifies where money is held.
type AccountType string

const (
	AccountBank       AccountType = "BANK"
	AccountUPI        AccountType = "UPI"
	AccountCreditCard AccountType = "CREDIT_CARD"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountUPI, AccountCreditCard:
		return true
	}
	return false
}

// User is a registered person. Reset token fields are never serialised.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	PasswordHash      string     `json:"-"`
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// Summary returns the public view of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Account holds money. Its current balance is derived from transactions and
// never stored.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// AccountWithBalance is an account plus its derived balance.
type AccountWithBalance struct {
	Account
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

// Category groups transactions of one entry type.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Type      EntryType `json:"type"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transaction is one ledger line. Amount is always positive; the sign is
// carried by Type.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	AccountID   *uuid.UUID      `json:"accountId"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        EntryType       `json:"type"`
	Notes       *string         `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Category    *Category       `json:"category,omitempty"`
}

// Entry is the slim projection of a transaction used for sums.
type Entry struct {
	ID            uuid.UUID
	AccountID     *uuid.UUID
	CategoryID    uuid.UUID
	CategoryName  string
	CategoryColor string
	Amount        decimal.Decimal
	Type          EntryType
	Date          time.Time
}
