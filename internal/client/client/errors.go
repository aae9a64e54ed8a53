package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means no usable token was present; the call was
	// answered locally without a round trip.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound matches a RejectedError carrying 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input rejected locally before any network call.
	ErrValidation = errors.New("validation error")
)

// RejectedError is a well-formed non-2xx answer from the server.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%d): %s", e.StatusCode, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// TransportError is a network failure or an unparseable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
