/*
errors.go - Centralized error types for the absence domain

PURPOSE:
  All domain error kinds in one place for consistency and discoverability.
  Services resolve these into outcome envelopes at the boundary; they are
  never thrown across it.

ERROR CATEGORIES:
  1. Period validation errors - The overlap-validator family
  2. Lifecycle errors - Missing documents, forbidden mutations
  3. Accounting errors - Unresolved references, unresolved rules

USAGE:
  Services match with errors.Is():

    if errors.Is(err, absence.ErrSettledImmutable) {
        return Forbidden("The overtime is settled")
    }
*/
package absence

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when required fields are missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced document is absent.
	ErrNotFound = errors.New("document not found")

	// ErrPeriodOverlap is returned when a candidate period overlaps a sibling.
	ErrPeriodOverlap = errors.New("period overlaps an existing period")

	// ErrInvalidRange is returned when a period ends at or before its start.
	ErrInvalidRange = errors.New("period end must be after start")

	// ErrOpenEndedNotLast is returned when an open-ended period is not the
	// chronologically last one.
	ErrOpenEndedNotLast = errors.New("all periods except the last must have an end date")

	// ErrMustCloseCurrent is returned when opening a new period while another
	// is still open.
	ErrMustCloseCurrent = errors.New("the current period must be closed before opening a new one")

	// ErrSettledImmutable is returned on any mutation of a settled overtime.
	ErrSettledImmutable = errors.New("overtime is settled and cannot be modified")

	// ErrForbidden is returned on an authorization denial.
	ErrForbidden = errors.New("forbidden")

	// ErrLookup is returned when an accounting reference cannot be resolved.
	ErrLookup = errors.New("unresolved reference")

	// ErrNotImplemented is returned when an accounting rule has no concrete
	// source (e.g., available quantity without a resolver).
	ErrNotImplemented = errors.New("no entitlement quantity source configured")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError reports which two periods collide.
type OverlapError struct {
	Candidate Period
	Existing  Period
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("period %s overlaps existing period %s", e.Candidate, e.Existing)
}

func (e *OverlapError) Unwrap() error { return ErrPeriodOverlap }

// MissingFieldsError lists the required fields absent from a service call.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPeriodOverlap) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOpenEndedNotLast) ||
		errors.Is(err, ErrMustCloseCurrent)
}

// IsNotFound returns true if the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrLookup)
}
