// Package services contains the write side of the Pennywise client: the
// mutation coordinator, which validates input, forwards writes through the
// API gateway and re-synchronizes dependent views, and the authentication
// service, which owns login, logout and session resets.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/client/views"
	"github.com/dmitrijs2005/pennywise/internal/logging"
)

// Refresher re-synchronizes views by ID. *views.Hub implements it.
type Refresher interface {
	Refresh(ctx context.Context, ids ...views.ViewID) error
}

// Views whose models depend on each resource.
var (
	BudgetDependents   = []views.ViewID{views.DashboardView, views.BudgetView}
	ExpenseDependents  = []views.ViewID{views.DashboardView, views.BudgetView, views.HistoryView}
	ShoppingDependents = []views.ViewID{views.ShoppingView}
)

// MutationService performs writes.
//
// Contract:
//   - input is validated first; a *ValidationError means nothing was sent.
//   - on success the dependent views are refreshed before returning.
//   - on any failure nothing is refreshed and the error is returned for the
//     caller to report. No write is ever applied optimistically.
type MutationService interface {
	SaveBudget(ctx context.Context, amount string) (*models.Budget, error)
	AddExpense(ctx context.Context, name, quantity, price string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	AddShoppingItem(ctx context.Context, name, quantity string) (*models.ShoppingItem, error)
	UpdateShoppingItem(ctx context.Context, id int64, name, quantity string) (*models.ShoppingItem, error)
	DeleteShoppingItem(ctx context.Context, id int64) error
}

type mutationService struct {
	client    client.Client
	refresher Refresher
	log       logging.Logger
}

// NewMutationService binds writes to c and refreshes through r.
func NewMutationService(c client.Client, r Refresher, log logging.Logger) MutationService {
	if log == nil {
		log = logging.Nop()
	}
	return &mutationService{client: c, refresher: r, log: log}
}

func (m *mutationService) SaveBudget(ctx context.Context, amount string) (*models.Budget, error) {
	value, err := models.ParseAmount(amount)
	if err != nil {
		return nil, invalid("amount", "must be a non-negative number")
	}

	b, err := m.client.PutBudget(ctx, value)
	if err != nil {
		return nil, err
	}
	m.resync(ctx, "save budget", BudgetDependents)
	return b, nil
}

func (m *mutationService) AddExpense(ctx context.Context, name, quantity, price string) (*models.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("item name", "must not be empty")
	}
	value, err := models.ParseAmount(price)
	if err != nil {
		return nil, invalid("price", "must be a non-negative number")
	}

	e, err := m.client.PostExpense(ctx, name, strings.TrimSpace(quantity), value)
	if err != nil {
		return nil, err
	}
	m.resync(ctx, "add expense", ExpenseDependents)
	return e, nil
}

func (m *mutationService) DeleteExpense(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be positive")
	}
	if err := m.client.DeleteExpense(ctx, id); err != nil {
		return err
	}
	m.resync(ctx, "delete expense", ExpenseDependents)
	return nil
}

func (m *mutationService) AddShoppingItem(ctx context.Context, name, quantity string) (*models.ShoppingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("item name", "must not be empty")
	}

	it, err := m.client.PostShoppingItem(ctx, name, strings.TrimSpace(quantity))
	if err != nil {
		return nil, err
	}
	m.resync(ctx, "add shopping item", ShoppingDependents)
	return it, nil
}

// UpdateShoppingItem replaces both name and quantity.
func (m *mutationService) UpdateShoppingItem(ctx context.Context, id int64, name, quantity string) (*models.ShoppingItem, error) {
	if id <= 0 {
		return nil, invalid("id", "must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("item name", "must not be empty")
	}

	it, err := m.client.PutShoppingItem(ctx, id, name, strings.TrimSpace(quantity))
	if err != nil {
		return nil, err
	}
	m.resync(ctx, "update shopping item", ShoppingDependents)
	return it, nil
}

func (m *mutationService) DeleteShoppingItem(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be positive")
	}
	if err := m.client.DeleteShoppingItem(ctx, id); err != nil {
		return err
	}
	m.resync(ctx, "delete shopping item", ShoppingDependents)
	return nil
}

// resync refreshes dependents after a write that already succeeded, so a
// refresh problem is logged rather than returned.
func (m *mutationService) resync(ctx context.Context, op string, ids []views.ViewID) {
	if m.refresher == nil {
		return
	}
	if err := m.refresher.Refresh(ctx, ids...); err != nil {
		m.log.Warn(ctx, "refresh after write failed", "op", op, "error", err)
	}
}
