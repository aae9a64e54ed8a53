package views

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ErrStale is returned by Sync when its result was discarded because a newer
// Sync started or the session epoch moved while it was in flight.
var ErrStale = errors.New("stale synchronization discarded")

// ViewID names a screen.
type ViewID string

const (
	DashboardView ViewID = "dashboard"
	BudgetView    ViewID = "budget"
	HistoryView   ViewID = "history"
	ShoppingView  ViewID = "shopping"
	ProfileView   ViewID = "profile"
)

// Slice names one independently fetched part of a view model.
type Slice string

const (
	SliceBudget    Slice = "budget"
	SliceTotal     Slice = "total"
	SliceExpenses  Slice = "expenses"
	SliceThreshold Slice = "threshold"
	SliceItems     Slice = "items"
	SliceProfile   Slice = "profile"
)

type State int

const (
	Idle State = iota
	Fetching
	Ready
	PartiallyDegraded
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case PartiallyDegraded:
		return "partially degraded"
	default:
		return "idle"
	}
}

// EpochSource exposes the current session epoch.
type EpochSource interface {
	Epoch() uint64
}

// Snapshot is a render-ready view model together with how it was obtained.
type Snapshot[M any] struct {
	Model    M
	State    State
	Epoch    uint64
	SyncedAt time.Time

	// Failures lists the slices that fell back to their defaults.
	Failures map[Slice]error
}

// FailedSlices returns the failed slice names in a stable order.
func (s Snapshot[M]) FailedSlices() []Slice {
	out := make([]Slice, 0, len(s.Failures))
	for k := range s.Failures {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fetchFunc issues a view's reads through fs and derives its model once they
// have all settled.
type fetchFunc[M any] func(ctx context.Context, fs *fetchSet) M

// Synchronizer runs one view's fetch set. Every Sync recomputes the model
// from scratch; a Sync superseded by a newer one, or overtaken by an epoch
// change, is discarded when it settles.
type Synchronizer[M any] struct {
	id    ViewID
	epoch EpochSource
	fetch fetchFunc[M]
	log   logging.Logger
	now   func() time.Time

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	active bool
	snap   Snapshot[M]

	// settled is the state of snap once no Sync is in flight.
	settled State
}

func newSynchronizer[M any](id ViewID, epoch EpochSource, o options, fetch fetchFunc[M]) *Synchronizer[M] {
	return &Synchronizer[M]{
		id:    id,
		epoch: epoch,
		fetch: fetch,
		log:   o.log.With("view", string(id)),
		now:   o.now,
	}
}

func (s *Synchronizer[M]) ID() ViewID { return s.id }

// Sync enters Fetching, runs the fetch set and publishes the reconciled
// model. A previous in-flight Sync is cancelled and will return ErrStale.
// When ctx ends before the fetch set settles nothing is published and the
// context error is returned.
func (s *Synchronizer[M]) Sync(ctx context.Context) (Snapshot[M], error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	epoch := s.epoch.Epoch()
	if s.snap.Epoch != epoch {
		s.snap = Snapshot[M]{Epoch: epoch}
		s.settled = Idle
	}
	s.snap.State = Fetching
	s.mu.Unlock()

	fs := newFetchSet(fctx)
	model := s.fetch(fctx, fs)
	failures := fs.wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	current := s.epoch.Epoch()
	if gen != s.gen || epoch != current {
		s.log.Debug(ctx, "discarding stale result", "gen", gen, "latest_gen", s.gen,
			"epoch", epoch, "current_epoch", current)
		if gen == s.gen {
			s.cancel = nil
			s.snap = Snapshot[M]{State: Idle, Epoch: current}
			s.settled = Idle
		}
		return Snapshot[M]{}, ErrStale
	}
	s.cancel = nil

	if err := ctx.Err(); err != nil {
		s.snap.State = s.settled
		s.log.Debug(ctx, "sync abandoned", "error", err)
		return Snapshot[M]{}, err
	}

	state := Ready
	for slice, err := range failures {
		if client.IsLocal(err) {
			continue
		}
		state = PartiallyDegraded
		s.log.Warn(ctx, "slice degraded to default", "slice", string(slice),
			"outcome", client.Classify(err).String(), "error", err)
	}

	s.snap = Snapshot[M]{
		Model:    model,
		State:    state,
		Epoch:    epoch,
		SyncedAt: s.now(),
		Failures: failures,
	}
	s.settled = state
	s.log.Debug(ctx, "synchronized", "state", state.String(), "epoch", epoch)
	return s.snap, nil
}

// Refresh is Sync without the snapshot.
func (s *Synchronizer[M]) Refresh(ctx context.Context) error {
	_, err := s.Sync(ctx)
	return err
}

// Current returns the latest published snapshot. A snapshot from an earlier
// epoch is never returned; an empty Idle one is returned instead.
func (s *Synchronizer[M]) Current() Snapshot[M] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch := s.epoch.Epoch(); s.snap.Epoch != epoch {
		return Snapshot[M]{State: Idle, Epoch: epoch}
	}
	return s.snap
}

// Invalidate drops the published model and cancels any in-flight Sync,
// which will return ErrStale. The view reports Idle until it is synchronized
// again.
func (s *Synchronizer[M]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.snap = Snapshot[M]{State: Idle, Epoch: s.epoch.Epoch()}
	s.settled = Idle
}

// Activate marks the view visible and synchronizes it.
func (s *Synchronizer[M]) Activate(ctx context.Context) (Snapshot[M], error) {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	return s.Sync(ctx)
}

// Deactivate hides the view; the Hub stops refreshing it.
func (s *Synchronizer[M]) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *Synchronizer[M]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// fetchSet runs reads concurrently. A failed read never cancels its siblings;
// it only records the failure and leaves its slice at the default.
type fetchSet struct {
	ctx context.Context
	g   errgroup.Group

	mu       sync.Mutex
	failures map[Slice]error
}

func newFetchSet(ctx context.Context) *fetchSet {
	return &fetchSet{ctx: ctx, failures: make(map[Slice]error)}
}

func (fs *fetchSet) fail(slice Slice, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failures[slice] = err
}

// wait blocks until every read settled and returns the failures.
func (fs *fetchSet) wait() map[Slice]error {
	_ = fs.g.Wait()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.failures
}

// read schedules fn and stores its value, or def on failure, into dst. dst
// may only be read after fs.wait.
func read[T any](fs *fetchSet, slice Slice, dst *T, def T, fn func(context.Context) (T, error)) {
	fs.g.Go(func() error {
		v, err := fn(fs.ctx)
		if err != nil {
			fs.fail(slice, err)
			v = def
		}
		*dst = v
		return nil
	})
}
