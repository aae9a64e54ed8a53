package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/client/views"
	"github.com/shopspring/decimal"
)

const notSet = "Not Set"

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + models.FormatAmount(d.Neg())
	}
	return "$" + models.FormatAmount(d)
}

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return notSet
	}
	return money(*d)
}

func renderDashboard(w io.Writer, m views.DashboardModel) {
	fmt.Fprintf(w, "Budget:     %s\n", optionalMoney(m.Budget))
	fmt.Fprintf(w, "Spent:      %s\n", money(m.Total))
	if m.Remaining != nil {
		fmt.Fprintf(w, "Remaining:  %s (%s)\n", money(*m.Remaining), m.Comparison)
	}
	fmt.Fprintln(w, "Last 7 days:")
	for _, b := range m.Weekly {
		fmt.Fprintf(w, "  %s %s\n", b.Label, money(b.Amount))
	}
}

func renderBudget(w io.Writer, m views.BudgetModel) {
	fmt.Fprintf(w, "Monthly budget: %s\n", optionalMoney(m.Budget))
	fmt.Fprintf(w, "Total spent:    %s\n", money(m.Total))
	if m.Remaining == nil {
		fmt.Fprintln(w, "Set a budget to compare your spending.")
		return
	}
	fmt.Fprintf(w, "Remaining:      %s\n", money(*m.Remaining))
	fmt.Fprintf(w, "Status:         %s\n", m.Comparison)
	if m.Threshold != nil && m.Threshold.Message != "" {
		fmt.Fprintf(w, "Server says:    %s\n", m.Threshold.Message)
	}
}

func renderHistory(w io.Writer, m views.HistoryModel) {
	if len(m.Expenses) == 0 {
		fmt.Fprintln(w, "No expenses recorded.")
	}
	for _, e := range m.Expenses {
		line := fmt.Sprintf("#%d  %s  %s  %s", e.ID, e.Timestamp.Format("2006-01-02 15:04"), e.ItemName, money(e.Price))
		if e.Quantity != "" {
			line += "  x" + e.Quantity
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Total: %s\n", money(m.Total))
}

func renderShopping(w io.Writer, m views.ShoppingModel) {
	if len(m.Items) == 0 {
		fmt.Fprintln(w, "Shopping list is empty.")
		return
	}
	for _, it := range m.Items {
		if it.Quantity != "" {
			fmt.Fprintf(w, "#%d  %s (%s)\n", it.ID, it.ItemName, it.Quantity)
			continue
		}
		fmt.Fprintf(w, "#%d  %s\n", it.ID, it.ItemName)
	}
}

func renderProfile(w io.Writer, m views.ProfileModel) {
	p := m.Profile
	if p == nil {
		fmt.Fprintln(w, "Profile unavailable.")
		return
	}
	fmt.Fprintf(w, "Username:  %s\n", p.Username)
	fmt.Fprintf(w, "Full name: %s\n", p.FullName)
	fmt.Fprintf(w, "Email:     %s\n", p.Email)
	fmt.Fprintf(w, "Phone:     %s\n", p.Phone)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Member since %s\n", p.CreatedAt.Format("2006-01-02"))
	}
}

// describe turns an error into the notification shown to the user.
func describe(err error) string {
	switch client.Classify(err) {
	case client.OutcomeUnauthenticated:
		return "Please log in first."
	case client.OutcomeValidation:
		return "Error: " + err.Error()
	case client.OutcomeRejected:
		var rejected *client.RejectedError
		if errors.As(err, &rejected) {
			return fmt.Sprintf("Request rejected: %s", rejected.Message)
		}
		return "Request rejected."
	default:
		return "Server unreachable, please try again: " + strings.TrimSpace(err.Error())
	}
}
