package client

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/shopspring/decimal"
)

// Client is the typed contract for the backend REST surface. Every method
// except Login, Signup and ResetPassword needs a token and fails with
// ErrUnauthenticated when none is available.
type Client interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, user models.NewUser) (*models.User, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
	GetProfile(ctx context.Context) (*models.Profile, error)

	GetBudget(ctx context.Context) (*models.Budget, error)
	PutBudget(ctx context.Context, amount decimal.Decimal) (*models.Budget, error)
	CheckBudgetThreshold(ctx context.Context) (*models.BudgetThreshold, error)

	ListExpenses(ctx context.Context) ([]models.Expense, error)
	GetExpensesTotal(ctx context.Context) (decimal.Decimal, error)
	PostExpense(ctx context.Context, itemName, quantity string, price decimal.Decimal) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	ListShoppingItems(ctx context.Context) ([]models.ShoppingItem, error)
	PostShoppingItem(ctx context.Context, itemName, quantity string) (*models.ShoppingItem, error)
	PutShoppingItem(ctx context.Context, id int64, itemName, quantity string) (*models.ShoppingItem, error)
	DeleteShoppingItem(ctx context.Context, id int64) error
}

// TokenSource yields the current bearer token, or false when the user is
// not authenticated.
type TokenSource interface {
	Token() (string, bool)
}
