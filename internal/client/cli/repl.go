package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Reset(ctx context.Context) error
	ForgotPassword(ctx context.Context) error

	Home(ctx context.Context) error
	Budget(ctx context.Context) error
	History(ctx context.Context) error
	ShoppingList(ctx context.Context) error
	Profile(ctx context.Context) error

	SetBudget(ctx context.Context) error
	AddExpense(ctx context.Context) error
	DeleteExpense(ctx context.Context) error
	AddItem(ctx context.Context) error
	EditItem(ctx context.Context) error
	DeleteItem(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: signup, login, forgot, reset, help, exit"
	helpLoggedIn  = "Available commands: home, budget, setbudget, history, addexpense, delexpense, " +
		"list, additem, edititem, delitem, profile, reset, logout, help, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Handler errors are reported to out and never stop the loop; it returns on
// end of input, on "exit"/"quit" or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "pw%s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "input error:", err)
			return
		}
		eof := errors.Is(err, io.EOF)

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if eof {
				fmt.Fprintln(out)
				return
			}
			continue
		}

		cmd := strings.ToLower(parts[0])
		var handler func(context.Context) error

		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpLoggedOut)
			}
		case "signup", "register":
			handler = a.Signup
		case "login":
			handler = a.Login
		case "logout":
			handler = a.Logout
		case "reset":
			handler = a.Reset
		case "forgot":
			handler = a.ForgotPassword
		case "home":
			handler = a.Home
		case "budget":
			handler = a.Budget
		case "setbudget":
			handler = a.SetBudget
		case "history":
			handler = a.History
		case "addexpense":
			handler = a.AddExpense
		case "delexpense":
			handler = a.DeleteExpense
		case "l", "list":
			handler = a.ShoppingList
		case "additem":
			handler = a.AddItem
		case "edititem":
			handler = a.EditItem
		case "delitem":
			handler = a.DeleteItem
		case "profile":
			handler = a.Profile
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if handler != nil {
			if err := handler(ctx); err != nil {
				fmt.Fprintln(out, describe(err))
			}
		}
		if eof {
			return
		}
	}
}
