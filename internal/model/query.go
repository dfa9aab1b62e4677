package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortField is a transaction column that listings may be ordered by.
type SortField string

const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortDescription SortField = "description"
	SortType        SortField = "type"
	SortCreatedAt   SortField = "createdAt"
)

// Valid reports whether f is on the sort allow-list.
func (f SortField) Valid() bool {
	switch f {
	case SortDate, SortAmount, SortDescription, SortType, SortCreatedAt:
		return true
	}
	return false
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	Search     string
	Type       EntryType
	CategoryID *uuid.UUID
	AccountID  *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// TransactionQuery is a normalised listing request: Page and PageSize are
// positive and SortBy is valid.
type TransactionQuery struct {
	Filter   TransactionFilter
	Page     int
	PageSize int
	SortBy   SortField
	Desc     bool
}

// Offset returns the number of rows to skip, saturating at math.MaxInt32.
func (q TransactionQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt32/q.PageSize {
		return math.MaxInt32
	}
	return (q.Page - 1) * q.PageSize
}

// EntryFilter selects ledger entries for aggregation.
type EntryFilter struct {
	Type      EntryType
	AccountID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// Page is the paginated envelope returned by listings.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds an envelope; TotalPages is ceil(total / pageSize).
func NewPage[T any](data []T, total, page, pageSize int) Page[T] {
	if data == nil {
		data = make([]T, 0)
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{Data: data, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

// CategoryBreakdown is the expense total of one category.
type CategoryBreakdown struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// MonthlyTrend holds the income and expense sums of one calendar month.
type MonthlyTrend struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Dashboard is a snapshot of a user's finances.
type Dashboard struct {
	TotalBalance       decimal.Decimal     `json:"totalBalance"`
	MonthIncome        decimal.Decimal     `json:"monthIncome"`
	MonthExpenses      decimal.Decimal     `json:"monthExpenses"`
	MonthNet           decimal.Decimal     `json:"monthNet"`
	CategoryBreakdown  []CategoryBreakdown `json:"categoryBreakdown"`
	MonthlyTrend       []MonthlyTrend      `json:"monthlyTrend"`
	RecentTransactions []Transaction       `json:"recentTransactions"`
}
