package views

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/logging"
	"github.com/shopspring/decimal"
)

type options struct {
	log logging.Logger
	now func() time.Time
	loc *time.Location
}

type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the clock that anchors the weekly window.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone in which calendar days are cut.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop(), now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// budgetReader treats a 404 as an unset budget, which is not a failure.
func budgetReader(c client.Client) func(context.Context) (*decimal.Decimal, error) {
	return func(ctx context.Context) (*decimal.Decimal, error) {
		b, err := c.GetBudget(ctx)
		if errors.Is(err, client.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		amount := b.Amount
		return &amount, nil
	}
}

// thresholdReader answers nil when no budget is set.
func thresholdReader(c client.Client) func(context.Context) (*models.BudgetThreshold, error) {
	return func(ctx context.Context) (*models.BudgetThreshold, error) {
		t, err := c.CheckBudgetThreshold(ctx)
		if errors.Is(err, client.ErrNotFound) {
			return nil, nil
		}
		return t, err
	}
}

func emptyExpenses() []models.Expense { return []models.Expense{} }
