package views

import (
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/shopspring/decimal"
)

// WeekDays is the size of the trailing spending window.
const WeekDays = 7

// Comparison classifies spending against the budget.
type Comparison int

const (
	// NoComparison is produced when no budget is set.
	NoComparison Comparison = iota
	UnderBudget
	OnBudget
	OverBudget
)

func (c Comparison) String() string {
	switch c {
	case UnderBudget:
		return "under budget"
	case OnBudget:
		return "on budget"
	case OverBudget:
		return "over budget"
	default:
		return "none"
	}
}

// Compare classifies total against budget. A nil budget is unset.
func Compare(budget *decimal.Decimal, total decimal.Decimal) Comparison {
	if budget == nil {
		return NoComparison
	}
	switch total.Cmp(*budget) {
	case 1:
		return OverBudget
	case 0:
		return OnBudget
	default:
		return UnderBudget
	}
}

// Remaining is budget minus total, negative when overspent, nil when the
// budget is unset.
func Remaining(budget *decimal.Decimal, total decimal.Decimal) *decimal.Decimal {
	if budget == nil {
		return nil
	}
	r := budget.Sub(total)
	return &r
}

// DayBucket is the spend of one calendar day.
type DayBucket struct {
	Label  string
	Date   time.Time
	Amount decimal.Decimal
}

// WeeklyBuckets sums expenses into seven daily buckets, oldest first, ending
// with the day of now in loc. Expenses dated outside the window, including
// future dates, are left out.
func WeeklyBuckets(expenses []models.Expense, now time.Time, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.Local
	}
	today := civil(now.In(loc))

	buckets := make([]DayBucket, WeekDays)
	for i := range buckets {
		day := today.AddDate(0, 0, i-(WeekDays-1))
		buckets[i] = DayBucket{
			Label:  day.Weekday().String()[:3],
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc),
			Amount: decimal.Zero,
		}
	}

	for _, e := range expenses {
		if e.Timestamp.IsZero() {
			continue
		}
		age := int(today.Sub(civil(e.Timestamp.In(loc))).Hours() / 24)
		if age < 0 || age >= WeekDays {
			continue
		}
		i := WeekDays - 1 - age
		buckets[i].Amount = buckets[i].Amount.Add(e.Price)
	}
	return buckets
}

// civil drops the clock and zone so day arithmetic ignores DST shifts.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
