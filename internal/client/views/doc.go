// Package views holds the view synchronizers: one per screen, each issuing
// its reads concurrently and reconciling them into a render-ready model.
//
// # Lifecycle
//
// A synchronizer moves Idle -> Fetching -> Ready or PartiallyDegraded and
// re-enters Fetching on every Activate, Hub refresh or epoch change. Each
// pass rebuilds the model from scratch.
//
// # Reconciliation
//
// Reads are independent. A failed read falls back to its slice default
// (budget unset, total zero, empty lists, nil profile) and never discards
// what its siblings fetched. Reads answered locally as unauthenticated use
// the same defaults but leave the state Ready.
//
// # Staleness
//
// Each Sync captures a generation and the session epoch. When it settles
// after a newer Sync started, or after the epoch moved, its result is
// dropped and ErrStale is returned.
package views
