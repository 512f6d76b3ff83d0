package absence

import "time"

// =============================================================================
// PERIOD - A validity window belonging to an account
// =============================================================================

// Period is a contiguous date range. A nil End means "open-ended, currently
// in effect". Invariant: when End is non-nil, *End must be after Start.
type Period struct {
	Start time.Time
	End   *time.Time
}

// Closed reports whether the period has an end date.
func (p Period) Closed() bool { return p.End != nil }

// ValidRange reports whether the period satisfies the range invariant:
// open-ended, or End strictly after Start.
func (p Period) ValidRange() bool {
	return p.End == nil || p.End.After(p.Start)
}

// Contains reports whether t falls inside [Start, End). Open-ended periods
// contain every instant at or after Start.
func (p Period) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.End == nil || t.Before(*p.End)
}

// Overlaps reports whether two half-open ranges [s1,e1) and [s2,e2) share any
// instant, treating a nil end as +infinity.
func (p Period) Overlaps(other Period) bool {
	startsBeforeOtherEnds := other.End == nil || p.Start.Before(*other.End)
	otherStartsBeforeEnds := p.End == nil || other.Start.Before(*p.End)
	return startsBeforeOtherEnds && otherStartsBeforeEnds
}

func (p Period) String() string {
	if p.End == nil {
		return "[" + p.Start.Format("2006-01-02") + ", open)"
	}
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + ")"
}

// =============================================================================
// ACCOUNT COLLECTION - A Period specialization linking account to collection
// =============================================================================

// AccountCollection links an account to a right collection for a validity
// period. Periods for the same account must not overlap and at most one may
// be open-ended; this is enforced by ValidatePeriods before every write.
type AccountCollection struct {
	ID           MembershipID
	AccountID    AccountID
	CollectionID CollectionID
	Period
	Created time.Time
}
