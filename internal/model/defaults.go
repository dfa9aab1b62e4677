package model

// DefaultCategory describes a category provisioned at registration.
type DefaultCategory struct {
	Name  string
	Type  EntryType
	Color string
}

// DefaultCategories returns the 14 categories every new user starts with.
func DefaultCategories() []DefaultCategory {
	return []DefaultCategory{
		{Name: "Salary", Type: Income, Color: "#22c55e"},
		{Name: "Freelance", Type: Income, Color: "#3b82f6"},
		{Name: "Investment", Type: Income, Color: "#a855f7"},
		{Name: "Other Income", Type: Income, Color: "#64748b"},
		{Name: "Food & Dining", Type: Expense, Color: "#ef4444"},
		{Name: "Transportation", Type: Expense, Color: "#f97316"},
		{Name: "Bills & Utilities", Type: Expense, Color: "#eab308"},
		{Name: "Shopping", Type: Expense, Color: "#ec4899"},
		{Name: "Entertainment", Type: Expense, Color: "#8b5cf6"},
		{Name: "Healthcare", Type: Expense, Color: "#06b6d4"},
		{Name: "Rent", Type: Expense, Color: "#0ea5e9"},
		{Name: "Groceries", Type: Expense, Color: "#84cc16"},
		{Name: "Credit Card & Loan", Type: Expense, Color: "#f43f5e"},
		{Name: "Other Expense", Type: Expense, Color: "#64748b"},
	}
}
