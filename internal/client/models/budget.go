package models

import "github.com/shopspring/decimal"

// Budget is the user's spending ceiling. A missing budget is represented by
// a nil *Budget, never by a zero amount.
type Budget struct {
	Amount decimal.Decimal `json:"amount"`
}

// BudgetThreshold is the server's own over/within verdict.
type BudgetThreshold struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Spent   decimal.Decimal `json:"spent"`
	Budget  decimal.Decimal `json:"budget"`
}
