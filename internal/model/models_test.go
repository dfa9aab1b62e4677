package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		total, pageSize int
		want            int
	}{
		{25, 10, 3},
		{20, 10, 2},
		{0, 10, 0},
		{1, 10, 1},
		{7, 0, 0},
	}
	for _, tt := range tests {
		p := NewPage[int](nil, tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.want, p.TotalPages, "total=%d pageSize=%d", tt.total, tt.pageSize)
		assert.NotNil(t, p.Data)
	}
}

func TestTransactionQueryOffset(t *testing.T) {
	tests := []struct {
		page, pageSize int
		want           int
	}{
		{1, 10, 0},
		{3, 10, 20},
		{0, 10, 0},
		{math.MaxInt, 100, math.MaxInt32},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32},
	}
	for _, tt := range tests {
		q := TransactionQuery{Page: tt.page, PageSize: tt.pageSize}
		assert.Equal(t, tt.want, q.Offset(), "page=%d pageSize=%d", tt.page, tt.pageSize)
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	var income, expense int
	for _, c := range cats {
		switch c.Type {
		case Income:
			income++
		case Expense:
			expense++
		}
		assert.Regexp(t, `^#[0-9a-fA-F]{6}$`, c.Color)
	}
	assert.Len(t, cats, 14)
	assert.Equal(t, 4, income)
	assert.Equal(t, 10, expense)
}

func TestEnums(t *testing.T) {
	assert.True(t, Income.Valid())
	assert.False(t, EntryType("income").Valid())
	assert.True(t, AccountCreditCard.Valid())
	assert.False(t, AccountType("CASH").Valid())
	assert.True(t, SortCreatedAt.Valid())
	assert.False(t, SortField("userId").Valid())
}
