/*
Package service implements the lifecycle services of the absence engine:
requests, overtimes, right renewals, collection memberships and balance
views. Services are plain structs holding the repositories they need plus a
logger; every operation takes a context, returns early on failure, and
resolves into a uniform outcome envelope at the boundary.

OUTCOME ENVELOPE:
  Every user-facing operation resolves to {document, $outcome} where the
  outcome carries a success flag and a human-readable message. Domain errors
  are translated, not thrown across the boundary; store errors short-circuit
  the remaining steps. No retries anywhere - all failures are terminal for
  the current operation.

SEE ALSO:
  - absence: domain types, pure validation, accounting
  - api: HTTP translation of envelopes and error kinds
*/
package service

import (
	"errors"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// OUTCOME - Uniform response envelope
// =============================================================================

// Outcome is the machine-checkable result attached to every resolved
// operation.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Envelope pairs a resolved document with its outcome, mirroring the
// `$outcome` convention of the REST payloads.
type Envelope[T any] struct {
	Data    T       `json:"data"`
	Outcome Outcome `json:"$outcome"`
}

// Resolved wraps a document in a success envelope with a confirmation
// message.
func Resolved[T any](data T, message string) *Envelope[T] {
	return &Envelope[T]{Data: data, Outcome: Outcome{Success: true, Message: message}}
}

// FailureOutcome translates a domain error into a failure outcome with the
// user-facing message.
func FailureOutcome(err error) Outcome {
	return Outcome{Success: false, Message: userMessage(err)}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, absence.ErrNotFound):
		return "The document does not exist"
	case errors.Is(err, absence.ErrSettledImmutable):
		return "The overtime is settled"
	case errors.Is(err, absence.ErrForbidden):
		return "Access denied"
	default:
		return err.Error()
	}
}
