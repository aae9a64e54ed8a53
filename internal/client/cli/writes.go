package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pennywise/internal/client/services"
)

func (a *App) SetBudget(ctx context.Context) error {
	amount, err := getSimpleText(a.reader, "Monthly budget amount", a.out)
	if err != nil {
		return err
	}
	b, err := a.mutations.SaveBudget(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Budget saved: %s\n", money(b.Amount))
	a.redraw()
	return nil
}

func (a *App) AddExpense(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Item name", a.out)
	if err != nil {
		return err
	}
	quantity, err := getSimpleText(a.reader, "Quantity (optional)", a.out)
	if err != nil {
		return err
	}
	price, err := getSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}

	e, err := a.mutations.AddExpense(ctx, name, quantity, price)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense #%d added: %s %s\n", e.ID, e.ItemName, money(e.Price))
	a.redraw()
	return nil
}

func (a *App) DeleteExpense(ctx context.Context) error {
	id, err := a.readID("Expense id to delete")
	if err != nil {
		return err
	}
	if err := a.mutations.DeleteExpense(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense #%d deleted\n", id)
	a.redraw()
	return nil
}

func (a *App) AddItem(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Item name", a.out)
	if err != nil {
		return err
	}
	quantity, err := getSimpleText(a.reader, "Quantity (optional)", a.out)
	if err != nil {
		return err
	}

	it, err := a.mutations.AddShoppingItem(ctx, name, quantity)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Item #%d added: %s\n", it.ID, it.ItemName)
	a.redraw()
	return nil
}

func (a *App) EditItem(ctx context.Context) error {
	id, err := a.readID("Item id to edit")
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "New item name", a.out)
	if err != nil {
		return err
	}
	quantity, err := getSimpleText(a.reader, "New quantity (optional)", a.out)
	if err != nil {
		return err
	}

	it, err := a.mutations.UpdateShoppingItem(ctx, id, name, quantity)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Item #%d updated: %s\n", it.ID, it.ItemName)
	a.redraw()
	return nil
}

func (a *App) DeleteItem(ctx context.Context) error {
	id, err := a.readID("Item id to delete")
	if err != nil {
		return err
	}
	if err := a.mutations.DeleteShoppingItem(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Item #%d deleted\n", id)
	a.redraw()
	return nil
}

// readID prompts for a numeric id; anything else is a validation error.
func (a *App) readID(prompt string) (int64, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, &services.ValidationError{Field: "id", Reason: "must be a number"}
	}
	return id, nil
}

