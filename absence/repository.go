/*
repository.go - Persistence interfaces for the domain documents

PURPOSE:
  Defines the boundary between the services and the document store. Each
  service receives the repositories it needs; tests inject the in-memory
  implementations without a live database.

IMPLEMENTATIONS:
  - store/memory: In-memory maps for tests and development
  - store/sqlite: SQLite-backed production store

QUERY SHAPE:
  The store exposes query-by-filter, save-with-validation and lookup-by-id,
  mirroring a document database. Referential fields hold IDs; snapshot
  fields are embedded denormalized copies.
*/
package absence

import "context"

// =============================================================================
// REQUESTS
// =============================================================================

// RequestFilter narrows request listings. A nil Deleted slice means the
// default filter (active or waiting-deletion requests).
type RequestFilter struct {
	User    UserID // empty = all users
	Deleted []DeletionStatus
}

// ListOptions is the optional pagination transform applied to a listing
// query before execution. Zero value = no pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

type RequestRepository interface {
	// FindRequest returns the request matching id and filter, or ErrNotFound.
	FindRequest(ctx context.Context, id RequestID, filter RequestFilter) (*Request, error)

	// ListRequests returns requests matching the filter, sorted by Created
	// ascending, with the optional pagination transform applied.
	ListRequests(ctx context.Context, filter RequestFilter, opts ListOptions) ([]Request, error)

	// SaveRequest inserts or replaces a request document.
	SaveRequest(ctx context.Context, req *Request) error
}

// =============================================================================
// OVERTIMES AND EVENTS
// =============================================================================

type OvertimeRepository interface {
	FindOvertime(ctx context.Context, id OvertimeID) (*Overtime, error)
	SaveOvertime(ctx context.Context, ot *Overtime) error
}

type EventRepository interface {
	FindEvent(ctx context.Context, id EventID) (*CalendarEvent, error)
	SaveEvent(ctx context.Context, ev *CalendarEvent) error
}

// =============================================================================
// PEOPLE
// =============================================================================

type UserRepository interface {
	FindUser(ctx context.Context, id UserID) (*User, error)
	SaveUser(ctx context.Context, u *User) error
}

type DepartmentRepository interface {
	FindDepartment(ctx context.Context, id DepartmentID) (*Department, error)
	SaveDepartment(ctx context.Context, d *Department) error
}

type AccountRepository interface {
	FindAccount(ctx context.Context, id AccountID) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

type RenewalRepository interface {
	FindRenewal(ctx context.Context, id RenewalID) (*RightRenewal, error)
	SaveRenewal(ctx context.Context, r *RightRenewal) error
}

// ElementRepository extends the read-only ledger capability the accounting
// facade uses with the writes the request lifecycle owns.
type ElementRepository interface {
	ElementReader
	SaveElement(ctx context.Context, el *AbsenceElement) error
}

// =============================================================================
// MEMBERSHIPS
// =============================================================================

type MembershipRepository interface {
	// MembershipsByAccount returns the account's collection periods sorted
	// by Start ascending.
	MembershipsByAccount(ctx context.Context, account AccountID) ([]AccountCollection, error)

	SaveMembership(ctx context.Context, m *AccountCollection) error
}

// =============================================================================
// DEPARTMENT ANCESTORS
// =============================================================================

// DepartmentAncestors walks the parent chain of the user's department, nearest
// first. A user without a department yields an empty slice. Cycles are cut by
// refusing to revisit a department.
func DepartmentAncestors(ctx context.Context, repo DepartmentRepository, u *User) ([]Department, error) {
	var chain []Department
	seen := map[DepartmentID]bool{}

	next := u.Department
	for next != "" && !seen[next] {
		seen[next] = true
		dep, err := repo.FindDepartment(ctx, next)
		if err != nil {
			if IsNotFound(err) {
				break
			}
			return nil, err
		}
		chain = append(chain, *dep)
		next = dep.Parent
	}
	return chain, nil
}
