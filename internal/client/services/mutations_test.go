package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/client/clienttest"
	"github.com/dmitrijs2005/pennywise/internal/client/credentials"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/client/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type recordingRefresher struct {
	mu    sync.Mutex
	calls [][]views.ViewID
	err   error
}

func (r *recordingRefresher) Refresh(_ context.Context, ids ...views.ViewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]views.ViewID(nil), ids...))
	return r.err
}

type env struct {
	srv   *clienttest.Server
	creds *credentials.Store
	api   *client.HTTPClient
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := clienttest.NewServer(t)
	srv.AddUser("alice", "secret")
	creds := credentials.NewStore(nil)
	api, err := client.NewHTTPClient(srv.URL, creds)
	require.NoError(t, err)
	require.NoError(t, creds.SetToken(context.Background(), srv.Token("alice")))
	return &env{srv: srv, creds: creds, api: api}
}

// ---- validation ----

func TestMutations_ValidationIssuesNoRequests(t *testing.T) {
	e := newEnv(t)
	ref := &recordingRefresher{}
	m := NewMutationService(e.api, ref, nil)
	ctx := context.Background()

	_, err := m.SaveBudget(ctx, "abc")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, client.OutcomeValidation, client.Classify(err))

	_, err = m.SaveBudget(ctx, "-5")
	assert.ErrorIs(t, err, client.ErrValidation)

	_, err = m.AddExpense(ctx, "  ", "", "10")
	assert.ErrorIs(t, err, client.ErrValidation)

	_, err = m.AddExpense(ctx, "Milk", "", "ten")
	assert.ErrorIs(t, err, client.ErrValidation)

	assert.ErrorIs(t, m.DeleteExpense(ctx, 0), client.ErrValidation)

	_, err = m.AddShoppingItem(ctx, "", "2")
	assert.ErrorIs(t, err, client.ErrValidation)

	_, err = m.UpdateShoppingItem(ctx, 3, "", "")
	assert.ErrorIs(t, err, client.ErrValidation)

	assert.ErrorIs(t, m.DeleteShoppingItem(ctx, -1), client.ErrValidation)

	assert.Zero(t, e.srv.TotalHits())
	assert.Empty(t, ref.calls)
}

// ---- dependents ----

func TestMutations_RefreshDependentsOnSuccess(t *testing.T) {
	e := newEnv(t)
	ref := &recordingRefresher{}
	m := NewMutationService(e.api, ref, nil)
	ctx := context.Background()

	b, err := m.SaveBudget(ctx, "200.00")
	require.NoError(t, err)
	assert.Equal(t, "200.00", models.FormatAmount(b.Amount))

	exp, err := m.AddExpense(ctx, " Milk ", "2", "3.40")
	require.NoError(t, err)
	assert.Equal(t, "Milk", exp.ItemName)
	assert.Equal(t, "2", exp.Quantity)

	require.NoError(t, m.DeleteExpense(ctx, exp.ID))

	it, err := m.AddShoppingItem(ctx, "Eggs", "12")
	require.NoError(t, err)

	upd, err := m.UpdateShoppingItem(ctx, it.ID, "Duck eggs", "")
	require.NoError(t, err)
	assert.Equal(t, "Duck eggs", upd.ItemName)
	assert.Empty(t, upd.Quantity, "edit replaces name and quantity together")

	require.NoError(t, m.DeleteShoppingItem(ctx, it.ID))

	assert.Equal(t, [][]views.ViewID{
		BudgetDependents,
		ExpenseDependents,
		ExpenseDependents,
		ShoppingDependents,
		ShoppingDependents,
		ShoppingDependents,
	}, ref.calls)
}

func TestMutations_FailuresSurfaceAndSkipRefresh(t *testing.T) {
	e := newEnv(t)
	ref := &recordingRefresher{}
	m := NewMutationService(e.api, ref, nil)
	ctx := context.Background()

	err := m.DeleteExpense(ctx, 999)
	var rejected *client.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusNotFound, rejected.StatusCode)
	assert.Equal(t, "Expense not found", rejected.Message)

	e.srv.Fail("PUT /budget/", http.StatusUnprocessableEntity)
	_, err = m.SaveBudget(ctx, "10")
	assert.Equal(t, client.OutcomeRejected, client.Classify(err))

	e.creds.ClearToken(ctx)
	_, err = m.AddShoppingItem(ctx, "Eggs", "")
	assert.ErrorIs(t, err, client.ErrUnauthenticated)

	assert.Empty(t, ref.calls)
}

func TestMutations_RefreshErrorDoesNotFailWrite(t *testing.T) {
	e := newEnv(t)
	ref := &recordingRefresher{err: errors.New("view broke")}
	m := NewMutationService(e.api, ref, nil)

	_, err := m.SaveBudget(context.Background(), "1")
	require.NoError(t, err)
	assert.Len(t, ref.calls, 1)
}

// ---- end to end with real views ----

func TestDeleteExpense_ResyncReflectsRemoval(t *testing.T) {
	e := newEnv(t)
	e.srv.SetBudget("alice", "200")
	e.srv.AddExpense("alice", "Milk", "50", time.Now())
	breadID := e.srv.AddExpense("alice", "Bread", "75.50", time.Now())
	ctx := context.Background()

	dash := views.NewDashboard(e.api, e.creds)
	hist := views.NewHistory(e.api, e.creds)
	hub := views.NewHub(nil, dash, hist)

	snap, err := dash.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "125.50", models.FormatAmount(snap.Model.Total))
	_, err = hist.Activate(ctx)
	require.NoError(t, err)

	m := NewMutationService(e.api, hub, nil)
	require.NoError(t, m.DeleteExpense(ctx, breadID))

	cur := dash.Current()
	assert.Equal(t, views.Ready, cur.State)
	assert.Equal(t, "50.00", models.FormatAmount(cur.Model.Total))
	require.NotNil(t, cur.Model.Remaining)
	assert.Equal(t, "150.00", models.FormatAmount(*cur.Model.Remaining))
	assert.Len(t, hist.Current().Model.Expenses, 1)
	assert.Equal(t, 4, e.srv.Hits("GET /expenses/total"))
}

func TestDeleteExpense_InactiveDependentDropsOutdatedModel(t *testing.T) {
	e := newEnv(t)
	e.srv.AddExpense("alice", "Milk", "50", time.Now())
	breadID := e.srv.AddExpense("alice", "Bread", "75.50", time.Now())
	ctx := context.Background()

	dash := views.NewDashboard(e.api, e.creds)
	hub := views.NewHub(nil, dash)

	snap, err := dash.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "125.50", models.FormatAmount(snap.Model.Total))
	dash.Deactivate()

	m := NewMutationService(e.api, hub, nil)
	require.NoError(t, m.DeleteExpense(ctx, breadID))

	cur := dash.Current()
	assert.Equal(t, views.Idle, cur.State, "a model from before the write is not Ready")
	assert.True(t, cur.Model.Total.IsZero())
	assert.Equal(t, 1, e.srv.Hits("GET /expenses/total"), "inactive views are not fetched")

	snap, err = dash.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, views.Ready, snap.State)
	assert.Equal(t, "50.00", models.FormatAmount(snap.Model.Total))
}

func TestFailedWrite_LeavesViewUntouched(t *testing.T) {
	e := newEnv(t)
	e.srv.SetBudget("alice", "200")
	ctx := context.Background()

	dash := views.NewDashboard(e.api, e.creds)
	hub := views.NewHub(nil, dash)
	before, err := dash.Activate(ctx)
	require.NoError(t, err)

	e.srv.Fail("PUT /budget/", http.StatusInternalServerError)
	m := NewMutationService(e.api, hub, nil)
	_, err = m.SaveBudget(ctx, "999")
	require.Error(t, err)

	after := dash.Current()
	require.NotNil(t, after.Model.Budget)
	assert.Equal(t, "200.00", models.FormatAmount(*after.Model.Budget))
	assert.Equal(t, before.SyncedAt, after.SyncedAt)
	assert.Equal(t, 1, e.srv.Hits("GET /budget/"))
}
