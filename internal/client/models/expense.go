package models

import "github.com/shopspring/decimal"

// Expense is a recorded purchase. Expenses are never edited, only deleted.
type Expense struct {
	ID        int64           `json:"id"`
	ItemName  string          `json:"item_name"`
	Quantity  string          `json:"quantity,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Timestamp Timestamp       `json:"timestamp"`
}

// Total sums the prices of expenses.
func Total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Price)
	}
	return sum
}
