package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pennywise/internal/client/views"
)

// show activates sync as the only visible screen, waits for its fetch set
// and renders the result. A pass overtaken by a session change is retried
// once against the new session.
func show[M any](ctx context.Context, a *App, sync *views.Synchronizer[M], render func(io.Writer, M)) error {
	a.activate(sync)

	fmt.Fprintf(a.out, "Loading %s...\n", sync.ID())
	snap, err := sync.Activate(ctx)
	if errors.Is(err, views.ErrStale) {
		snap, err = sync.Sync(ctx)
	}
	if err != nil {
		return err
	}

	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not logged in; showing empty data.")
	}
	render(a.out, snap.Model)
	if snap.State == views.PartiallyDegraded {
		names := make([]string, 0, len(snap.Failures))
		for _, s := range snap.FailedSlices() {
			names = append(names, string(s))
		}
		fmt.Fprintf(a.out, "Some data could not be loaded: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func (a *App) Home(ctx context.Context) error {
	return show(ctx, a, a.dashboard.Synchronizer, renderDashboard)
}

func (a *App) Budget(ctx context.Context) error {
	return show(ctx, a, a.budget.Synchronizer, renderBudget)
}

func (a *App) History(ctx context.Context) error {
	return show(ctx, a, a.history.Synchronizer, renderHistory)
}

func (a *App) ShoppingList(ctx context.Context) error {
	return show(ctx, a, a.shopping.Synchronizer, renderShopping)
}

func (a *App) Profile(ctx context.Context) error {
	return show(ctx, a, a.profile.Synchronizer, renderProfile)
}

// redraw prints the active screen again after a write refreshed it.
func (a *App) redraw() {
	for _, s := range a.screens {
		if !s.Active() {
			continue
		}
		switch s.ID() {
		case views.DashboardView:
			renderDashboard(a.out, a.dashboard.Current().Model)
		case views.BudgetView:
			renderBudget(a.out, a.budget.Current().Model)
		case views.HistoryView:
			renderHistory(a.out, a.history.Current().Model)
		case views.ShoppingView:
			renderShopping(a.out, a.shopping.Current().Model)
		}
	}
}
