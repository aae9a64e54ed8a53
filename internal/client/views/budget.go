package views

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/shopspring/decimal"
)

// BudgetModel backs the budget screen.
type BudgetModel struct {
	Budget     *decimal.Decimal
	Total      decimal.Decimal
	Remaining  *decimal.Decimal
	Comparison Comparison

	// Threshold is the server's own verdict, nil when unavailable.
	Threshold *models.BudgetThreshold
}

type Budget struct {
	*Synchronizer[BudgetModel]
}

func NewBudget(c client.Client, epoch EpochSource, opts ...Option) *Budget {
	o := buildOptions(opts)
	return &Budget{newSynchronizer(BudgetView, epoch, o, func(ctx context.Context, fs *fetchSet) BudgetModel {
		var m BudgetModel
		read(fs, SliceBudget, &m.Budget, nil, budgetReader(c))
		read(fs, SliceTotal, &m.Total, decimal.Zero, c.GetExpensesTotal)
		read(fs, SliceThreshold, &m.Threshold, nil, thresholdReader(c))
		fs.wait()

		m.Remaining = Remaining(m.Budget, m.Total)
		m.Comparison = Compare(m.Budget, m.Total)
		return m
	})}
}
