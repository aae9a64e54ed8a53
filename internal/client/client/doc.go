// Package client is the API gateway of the Pennywise client.
//
// # Overview
//
//  1. Client is the typed contract for the backend: auth, budget, expenses,
//     expenses/total and shopping-list resource groups.
//  2. HTTPClient implements it over JSON/HTTP. A bearer token is read from
//     a TokenSource on every protected call; without one the call returns
//     ErrUnauthenticated and nothing is sent.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite file that
//     backs the credential store.
//
// # Error Handling
//
// Every call settles into one Outcome (see Classify):
//
//   - ErrUnauthenticated: no token, answered locally.
//   - ErrValidation: input refused before any request (used by services).
//   - *RejectedError: non-2xx answer; 404 also matches ErrNotFound.
//   - *TransportError: network error or unparseable body.
//
// There are no retries at this layer or above.
package client
