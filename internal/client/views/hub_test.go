package views

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingView struct {
	id     ViewID
	active bool
	err    error
	calls  atomic.Int32
}

func (v *countingView) ID() ViewID   { return v.id }
func (v *countingView) Active() bool { return v.active }
func (v *countingView) Refresh(context.Context) error {
	v.calls.Add(1)
	return v.err
}

func TestHub_RefreshSkipsInactiveAndUnknown(t *testing.T) {
	dash := &countingView{id: DashboardView, active: true}
	hist := &countingView{id: HistoryView}
	h := NewHub(nil, dash, hist)

	require.NoError(t, h.Refresh(context.Background(), DashboardView, HistoryView, ShoppingView))

	assert.Equal(t, int32(1), dash.calls.Load())
	assert.Equal(t, int32(0), hist.calls.Load())
}

type invalidatingView struct {
	countingView
	invalidated atomic.Int32
}

func (v *invalidatingView) Invalidate() { v.invalidated.Add(1) }

func TestHub_RefreshInvalidatesListedInactiveViews(t *testing.T) {
	dash := &invalidatingView{countingView: countingView{id: DashboardView, active: true}}
	hist := &invalidatingView{countingView: countingView{id: HistoryView}}
	shop := &invalidatingView{countingView: countingView{id: ShoppingView}}
	h := NewHub(nil, dash, hist, shop)

	require.NoError(t, h.Refresh(context.Background(), DashboardView, HistoryView))

	assert.Equal(t, int32(1), dash.calls.Load())
	assert.Equal(t, int32(0), dash.invalidated.Load())
	assert.Equal(t, int32(0), hist.calls.Load())
	assert.Equal(t, int32(1), hist.invalidated.Load())
	assert.Equal(t, int32(0), shop.invalidated.Load(), "views not listed are untouched")
}

func TestHub_RefreshIgnoresStaleButReportsOtherErrors(t *testing.T) {
	stale := &countingView{id: DashboardView, active: true, err: ErrStale}
	h := NewHub(nil, stale)
	require.NoError(t, h.RefreshActive(context.Background()))

	boom := errors.New("boom")
	broken := &countingView{id: BudgetView, active: true, err: boom}
	h.Register(broken)
	err := h.RefreshActive(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "refresh budget")
}

func TestHub_RegisterReplacesSameID(t *testing.T) {
	first := &countingView{id: DashboardView, active: true}
	second := &countingView{id: DashboardView, active: true}
	h := NewHub(nil, first)
	h.Register(second)

	require.NoError(t, h.RefreshActive(context.Background()))
	assert.Equal(t, int32(0), first.calls.Load())
	assert.Equal(t, int32(1), second.calls.Load())
}

func TestHub_WatchResyncsActiveViewsOnEpochChange(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBudget("alice", "80")
	f.srv.SetBudget("bob", "90")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dash := NewDashboard(f.api, f.creds, f.opts...)
	hist := NewHistory(f.api, f.creds, f.opts...)
	h := NewHub(nil, dash, hist)

	_, err := dash.Activate(ctx)
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		h.Watch(ctx, f.creds)
		close(stopped)
	}()

	budgetIs := func(want string) func() bool {
		return func() bool {
			cur := dash.Current()
			return cur.State == Ready && cur.Model.Budget != nil && models.FormatAmount(*cur.Model.Budget) == want
		}
	}

	// Watch subscribes asynchronously; keep logging in until the first pass lands.
	require.Eventually(t, func() bool {
		if budgetIs("80.00")() {
			return true
		}
		_ = f.creds.SetToken(ctx, f.srv.Token("alice"))
		return false
	}, 2*time.Second, 20*time.Millisecond)

	f.creds.ClearToken(ctx)
	f.login(t, "bob")
	require.Eventually(t, budgetIs("90.00"), 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, Idle, hist.Current().State, "inactive views are not refreshed")

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
