package validate

import (
	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/model"
)

// TransactionInput is the create/update payload of a transaction.
type TransactionInput struct {
	Amount      decimal.Decimal `json:"amount" binding:"gt=0" msg:"gt=Amount must be positive"`
	Date        string          `json:"date" binding:"required,isodate" msg:"required=Date is required;isodate=Invalid date"`
	Description string          `json:"description" binding:"required" msg:"required=Description is required"`
	Type        model.EntryType `json:"type" binding:"required,oneof=INCOME EXPENSE" msg:"required=Type is required;oneof=Type must be INCOME or EXPENSE"`
	CategoryID  string          `json:"categoryId" binding:"required" msg:"required=Category is required"`
	AccountID   *string         `json:"accountId"`
	Notes       *string         `json:"notes"`
}

// CategoryInput is the create payload of a category.
type CategoryInput struct {
	Name  string          `json:"name" binding:"required" msg:"required=Name is required"`
	Type  model.EntryType `json:"type" binding:"required,oneof=INCOME EXPENSE" msg:"required=Type is required;oneof=Type must be INCOME or EXPENSE"`
	Color string          `json:"color" binding:"hexcolor6" msg:"hexcolor6=Invalid hex color"`
	Icon  *string         `json:"icon"`
}

// AccountInput is the create/update payload of an account.
type AccountInput struct {
	Name           string            `json:"name" binding:"required,max=50" msg:"required=Name is required;max=Name is too long"`
	Type           model.AccountType `json:"type" binding:"required,oneof=BANK UPI CREDIT_CARD" msg:"required=Type is required;oneof=Type must be BANK, UPI or CREDIT_CARD"`
	InitialBalance *decimal.Decimal  `json:"initialBalance" binding:"required" msg:"required=Initial balance is required"`
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name            string `json:"name" binding:"required" msg:"required=Name is required"`
	Email           string `json:"email" binding:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
	Password        string `json:"password" binding:"min=6,max=72" msg:"min=Password must be at least 6 characters;max=Password must be at most 72 characters"`
	ConfirmPassword string `json:"confirmPassword" binding:"eqfield=Password" msg:"eqfield=Passwords don't match"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
	Password string `json:"password" binding:"required" msg:"required=Password is required"`
}

// ForgotPasswordInput requests a reset link.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
}

// ResetPasswordInput consumes a reset token.
type ResetPasswordInput struct {
	Token           string `json:"token" binding:"required" msg:"required=Token is required"`
	Password        string `json:"password" binding:"min=6,max=72" msg:"min=Password must be at least 6 characters;max=Password must be at most 72 characters"`
	ConfirmPassword string `json:"confirmPassword" binding:"eqfield=Password" msg:"eqfield=Passwords don't match"`
}
