package views

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/shopspring/decimal"
)

// DashboardModel backs the home screen.
type DashboardModel struct {
	// Budget is nil when unset.
	Budget     *decimal.Decimal
	Total      decimal.Decimal
	Remaining  *decimal.Decimal
	Comparison Comparison
	Weekly     []DayBucket
	Expenses   []models.Expense
}

type Dashboard struct {
	*Synchronizer[DashboardModel]
}

// NewDashboard reads budget, total and the expense list concurrently.
func NewDashboard(c client.Client, epoch EpochSource, opts ...Option) *Dashboard {
	o := buildOptions(opts)
	return &Dashboard{newSynchronizer(DashboardView, epoch, o, func(ctx context.Context, fs *fetchSet) DashboardModel {
		var m DashboardModel
		read(fs, SliceBudget, &m.Budget, nil, budgetReader(c))
		read(fs, SliceTotal, &m.Total, decimal.Zero, c.GetExpensesTotal)
		read(fs, SliceExpenses, &m.Expenses, emptyExpenses(), c.ListExpenses)
		fs.wait()

		m.Remaining = Remaining(m.Budget, m.Total)
		m.Comparison = Compare(m.Budget, m.Total)
		m.Weekly = WeeklyBuckets(m.Expenses, o.now(), o.loc)
		return m
	})}
}
