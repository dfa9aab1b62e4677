// Package store persists users, accounts, categories and transactions.
// Every read and write is scoped to the owning user.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance-tracker-backend/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist for the given owner.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate")
	// ErrInUse is returned when other rows still reference the target.
	ErrInUse = errors.New("in use")
)

// Store is implemented by the Postgres and in-memory backends.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// CreateUser inserts the user and its categories atomically.
	CreateUser(ctx context.Context, u model.User, categories []model.Category) error
	UserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expires time.Time) error
	// ConsumeResetToken sets a new password hash for the user holding the
	// unexpired token hash and clears the token in one step. It returns
	// ErrNotFound when no such token exists.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (uuid.UUID, error)

	ListAccounts(ctx context.Context, userID uuid.UUID) ([]model.Account, error)
	GetAccount(ctx context.Context, userID, id uuid.UUID) (model.Account, error)
	// AccountNameTaken reports whether another account of the user has name.
	AccountNameTaken(ctx context.Context, userID uuid.UUID, name string, except *uuid.UUID) (bool, error)
	CreateAccount(ctx context.Context, a model.Account) error
	UpdateAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, userID, id uuid.UUID) error

	ListCategories(ctx context.Context, userID uuid.UUID, typ model.EntryType) ([]model.Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (model.Category, error)
	CategoryNameTaken(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	CreateCategory(ctx context.Context, c model.Category) error

	// ListTransactions returns one page of matches, each with its category,
	// and the total number of matches.
	ListTransactions(ctx context.Context, userID uuid.UUID, q model.TransactionQuery) ([]model.Transaction, int, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (model.Transaction, error)
	CreateTransaction(ctx context.Context, t model.Transaction) error
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	CountTransactions(ctx context.Context, userID uuid.UUID, f model.EntryFilter) (int, error)
	// Entries returns matching ledger entries ordered by date then id.
	Entries(ctx context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error)
}
