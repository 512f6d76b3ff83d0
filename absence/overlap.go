/*
overlap.go - Admissibility rules for account collection periods

PURPOSE:
  Decides whether a candidate period may be written, given the account's
  existing periods. This is the write-time guard for the membership
  invariants: no overlap, and at most one open-ended period which must be
  chronologically last.

ALGORITHM:
  1. Reject candidates with End <= Start
  2. Sort existing periods by Start ascending (stable)
  3. Every period except the last in sort order must be closed
  4. If the last period is open and is not the record being updated,
     the candidate is rejected: close the current period first
  5. The candidate must not overlap any sibling (half-open ranges,
     nil end treated as +infinity)

The validation is re-run in full against all sibling periods on every insert
or update. There is no incremental index; per-account period counts are
human-scale so the linear pass is fine.

CONCURRENCY NOTE:
  The read-validate-write sequence is not atomic. Two writers racing on the
  same account can both pass validation; the store's unique index on
  (account, collection, from) is the only backstop.

SEE ALSO:
  - period.go: Period and AccountCollection types
  - service/memberships.go: Runs this before every membership write
*/
package absence

import "sort"

// ValidatePeriods checks that candidate is admissible among the account's
// existing periods. The candidate may itself appear in existing (an update);
// it is recognized by ID and skipped for the overlap and open-period checks.
//
// Returns nil on success, or one of the period-validation errors:
// ErrInvalidRange, ErrOpenEndedNotLast, ErrMustCloseCurrent, or an
// *OverlapError (unwraps to ErrPeriodOverlap).
func ValidatePeriods(existing []AccountCollection, candidate AccountCollection) error {
	if !candidate.ValidRange() {
		return ErrInvalidRange
	}

	sorted := make([]AccountCollection, len(existing))
	copy(sorted, existing)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for i, sibling := range sorted {
		last := i == len(sorted)-1

		if !sibling.Closed() && !last {
			return ErrOpenEndedNotLast
		}

		if sibling.ID == candidate.ID {
			continue
		}

		// A new period cannot be opened while another is still open, unless
		// the open one is the record being updated.
		if !sibling.Closed() && last {
			return ErrMustCloseCurrent
		}

		if sibling.Overlaps(candidate.Period) {
			return &OverlapError{Candidate: candidate.Period, Existing: sibling.Period}
		}
	}

	return nil
}
