package views

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/shopspring/decimal"
)

// HistoryModel backs the expense history screen. Expenses keep the server's
// newest-first order.
type HistoryModel struct {
	Expenses []models.Expense
	Total    decimal.Decimal
}

type History struct {
	*Synchronizer[HistoryModel]
}

func NewHistory(c client.Client, epoch EpochSource, opts ...Option) *History {
	o := buildOptions(opts)
	return &History{newSynchronizer(HistoryView, epoch, o, func(ctx context.Context, fs *fetchSet) HistoryModel {
		var m HistoryModel
		read(fs, SliceExpenses, &m.Expenses, emptyExpenses(), c.ListExpenses)
		read(fs, SliceTotal, &m.Total, decimal.Zero, c.GetExpensesTotal)
		fs.wait()
		return m
	})}
}
