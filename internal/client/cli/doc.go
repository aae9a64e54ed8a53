// Package cli provides the interactive Pennywise command-line client.
//
// It wires configuration, the local session database, the API gateway, the
// view synchronizers and the write services behind a small REPL. One screen
// is active at a time: showing a screen activates its synchronizer and
// deactivates the rest, so epoch changes and writes only refresh what the
// user is looking at.
//
// Screens:   home, budget, history, list, profile
// Writes:    setbudget, addexpense, delexpense, additem, edititem, delitem
// Session:   signup, login, logout, reset, forgot
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
