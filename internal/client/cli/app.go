package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/config"
	"github.com/dmitrijs2005/pennywise/internal/client/credentials"
	"github.com/dmitrijs2005/pennywise/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pennywise/internal/client/services"
	"github.com/dmitrijs2005/pennywise/internal/client/views"
	"github.com/dmitrijs2005/pennywise/internal/logging"
)

// screen is what App needs from every view synchronizer.
type screen interface {
	views.View
	Deactivate()
}

type App struct {
	auth      services.AuthService
	mutations services.MutationService
	creds     *credentials.Store
	hub       *views.Hub
	log       logging.Logger

	dashboard *views.Dashboard
	budget    *views.Budget
	history   *views.History
	shopping  *views.Shopping
	profile   *views.Profile
	screens   []screen

	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database, restores the persisted session and wires
// the gateway, views and services described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	creds := credentials.NewStore(metadata.NewSQLiteRepository(db), credentials.WithLogger(log))
	if err := creds.Load(ctx); err != nil {
		log.Warn(ctx, "stored session unreadable, starting logged out", "error", err)
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, creds,
		client.WithTimeout(c.RequestTimeout), client.WithLogger(log.With("component", "gateway")))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(api, creds, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(api client.Client, creds *credentials.Store, log logging.Logger, in io.Reader, out io.Writer, opts ...views.Option) *App {
	opts = append([]views.Option{views.WithLogger(log)}, opts...)

	a := &App{
		creds:     creds,
		log:       log,
		dashboard: views.NewDashboard(api, creds, opts...),
		budget:    views.NewBudget(api, creds, opts...),
		history:   views.NewHistory(api, creds, opts...),
		shopping:  views.NewShopping(api, creds, opts...),
		profile:   views.NewProfile(api, creds, opts...),
		reader:    bufio.NewReader(in),
		out:       out,
	}
	a.screens = []screen{a.dashboard, a.budget, a.history, a.shopping, a.profile}

	hubViews := make([]views.View, 0, len(a.screens))
	for _, s := range a.screens {
		hubViews = append(hubViews, s)
	}
	a.hub = views.NewHub(log.With("component", "hub"), hubViews...)
	a.auth = services.NewAuthService(api, creds, log)
	a.mutations = services.NewMutationService(api, a.hub, log)
	return a
}

// Run watches the session epoch and serves the REPL until the user exits or
// input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	go a.hub.Watch(ctx, a.creds)

	fmt.Fprintln(a.out, "Welcome to Pennywise (type 'help' for commands)")
	if a.isLoggedIn() {
		if err := a.Home(ctx); err != nil {
			fmt.Fprintln(a.out, describe(err))
		}
	}
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.LoggedIn()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	if sess, ok := a.auth.Session(); ok && sess.Subject != "" {
		return fmt.Sprintf(" (%s)", sess.Subject)
	}
	return " (logged in)"
}

// activate makes s the only active screen.
func (a *App) activate(s screen) {
	for _, other := range a.screens {
		if other.ID() != s.ID() {
			other.Deactivate()
		}
	}
}
