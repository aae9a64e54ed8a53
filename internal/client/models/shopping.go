package models

// ShoppingItem is a planned purchase with a lifecycle independent of expenses.
type ShoppingItem struct {
	ID       int64  `json:"id"`
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity,omitempty"`
}
