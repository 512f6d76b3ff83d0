package absence

import "time"

// =============================================================================
// REQUEST - A leave request with soft-delete status
// =============================================================================

// DeletionStatus is the soft-delete flag of a request. Requests are never
// physically removed; the flag moves through an orthogonal mini-workflow.
type DeletionStatus string

const (
	// DeletionNone marks an active request.
	DeletionNone DeletionStatus = ""

	// DeletionWaiting marks a deletion awaiting approval. Such requests are
	// still included in default listings.
	DeletionWaiting DeletionStatus = "waiting"

	// DeletionAccepted marks a deleted request, excluded from default
	// listings and from further lifecycle operations.
	DeletionAccepted DeletionStatus = "accepted"
)

// DefaultDeletionFilter is the deleted-status set default listings accept.
func DefaultDeletionFilter() []DeletionStatus {
	return []DeletionStatus{DeletionNone, DeletionWaiting}
}

// RequestStatus groups the status flags carried by a request. Title is the
// computed display status, filled on listing, not stored.
type RequestStatus struct {
	Created DeletionStatus `json:"created,omitempty"`
	Deleted DeletionStatus `json:"deleted,omitempty"`
	Title   string         `json:"title,omitempty"`
}

// Request is a leave request. Events reference calendar events owned by the
// request; ElementIDs reference the absence elements the request consumed.
type Request struct {
	ID         RequestID
	User       UserSnapshot
	Status     RequestStatus
	EventIDs   []EventID
	ElementIDs []ElementID
	CreatedBy  UserSnapshot
	Created    time.Time
}

// DisplayStatus returns the human-readable status title for listings.
func (r Request) DisplayStatus() string {
	switch r.Status.Deleted {
	case DeletionAccepted:
		return "Deleted"
	case DeletionWaiting:
		return "Waiting deletion approval"
	}
	if r.Status.Created == DeletionWaiting {
		return "Waiting approval"
	}
	return "Accepted"
}

// Deleted reports whether the request has been soft-deleted.
func (r Request) Deleted() bool {
	return r.Status.Deleted == DeletionAccepted
}
