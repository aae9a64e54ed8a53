// Package models defines the client-side copies of server-owned resources
// (budget, expenses, shopping items, profile). Monetary values are
// decimal.Decimal end to end; nothing here is authoritative local state.
package models
