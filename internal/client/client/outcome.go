package client

import "errors"

// Outcome is the closed set every gateway call settles into.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnauthenticated
	OutcomeValidation
	OutcomeRejected
	OutcomeTransport
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeValidation:
		return "validation_error"
	case OutcomeRejected:
		return "rejected"
	default:
		return "transport_failure"
	}
}

// Classify maps err onto an Outcome. Errors of unknown shape count as
// transport failures.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrUnauthenticated) {
		return OutcomeUnauthenticated
	}
	if errors.Is(err, ErrValidation) {
		return OutcomeValidation
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return OutcomeRejected
	}
	return OutcomeTransport
}

// IsLocal reports whether err was resolved without reaching the server.
func IsLocal(err error) bool {
	switch Classify(err) {
	case OutcomeUnauthenticated, OutcomeValidation:
		return true
	default:
		return false
	}
}
