package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pennywise/internal/logging"
	"golang.org/x/sync/errgroup"
)

// View is what the Hub needs from a synchronizer.
type View interface {
	ID() ViewID
	Active() bool
	Refresh(ctx context.Context) error
}

// Invalidator is implemented by views that can drop a model known to be out
// of date.
type Invalidator interface {
	Invalidate()
}

// Signal publishes session epoch changes.
type Signal interface {
	Subscribe() (<-chan uint64, func())
}

// Hub fans triggers out to registered views: epoch changes reach every
// active view, mutations reach the views that depend on what they changed.
type Hub struct {
	views map[ViewID]View
	order []ViewID
	log   logging.Logger
}

func NewHub(log logging.Logger, views ...View) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	h := &Hub{views: make(map[ViewID]View), log: log}
	for _, v := range views {
		h.Register(v)
	}
	return h
}

// Register adds v, replacing a view with the same ID.
func (h *Hub) Register(v View) {
	if _, ok := h.views[v.ID()]; !ok {
		h.order = append(h.order, v.ID())
	}
	h.views[v.ID()] = v
}

// Refresh concurrently re-synchronizes the listed views that are active.
// Listed inactive views are invalidated, so they report Idle rather than an
// outdated model until they are next activated. Superseded syncs are not
// errors.
func (h *Hub) Refresh(ctx context.Context, ids ...ViewID) error {
	var g errgroup.Group
	for _, id := range ids {
		v, ok := h.views[id]
		if !ok {
			continue
		}
		if !v.Active() {
			if inv, ok := v.(Invalidator); ok {
				inv.Invalidate()
			}
			continue
		}
		g.Go(func() error {
			if err := v.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
				return fmt.Errorf("refresh %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// RefreshActive re-synchronizes every active view.
func (h *Hub) RefreshActive(ctx context.Context) error {
	return h.Refresh(ctx, h.order...)
}

// Watch refreshes all active views on every epoch published by sig until
// ctx is done. Each epoch triggers one pass; a pass still running when the
// next epoch arrives is superseded by the views themselves.
func (h *Hub) Watch(ctx context.Context, sig Signal) {
	epochs, cancel := sig.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case epoch, ok := <-epochs:
			if !ok {
				return
			}
			h.log.Debug(ctx, "session epoch changed", "epoch", epoch)
			go func() {
				if err := h.RefreshActive(ctx); err != nil {
					h.log.Warn(ctx, "refresh after epoch change failed", "epoch", epoch, "error", err)
				}
			}()
		}
	}
}
