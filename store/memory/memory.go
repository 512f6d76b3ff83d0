// Package memory provides an in-memory implementation of every repository
// interface, for tests and development. Maps are guarded by a single RWMutex;
// documents are copied on the way in and out so callers cannot alias store
// state.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// MEMORY STORE - All collections in one struct
// =============================================================================

type Store struct {
	mu sync.RWMutex

	requests    map[absence.RequestID]absence.Request
	overtimes   map[absence.OvertimeID]absence.Overtime
	events      map[absence.EventID]absence.CalendarEvent
	users       map[absence.UserID]absence.User
	departments map[absence.DepartmentID]absence.Department
	accounts    map[absence.AccountID]absence.Account
	renewals    map[absence.RenewalID]absence.RightRenewal
	elements    map[absence.ElementID]absence.AbsenceElement
	memberships map[absence.MembershipID]absence.AccountCollection
}

func New() *Store {
	return &Store{
		requests:    make(map[absence.RequestID]absence.Request),
		overtimes:   make(map[absence.OvertimeID]absence.Overtime),
		events:      make(map[absence.EventID]absence.CalendarEvent),
		users:       make(map[absence.UserID]absence.User),
		departments: make(map[absence.DepartmentID]absence.Department),
		accounts:    make(map[absence.AccountID]absence.Account),
		renewals:    make(map[absence.RenewalID]absence.RightRenewal),
		elements:    make(map[absence.ElementID]absence.AbsenceElement),
		memberships: make(map[absence.MembershipID]absence.AccountCollection),
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

func matchesDeletion(status absence.DeletionStatus, accepted []absence.DeletionStatus) bool {
	for _, s := range accepted {
		if status == s {
			return true
		}
	}
	return false
}

func (m *Store) FindRequest(_ context.Context, id absence.RequestID, filter absence.RequestFilter) (*absence.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	if filter.User != "" && req.User.ID != filter.User {
		return nil, absence.ErrNotFound
	}
	if filter.Deleted != nil && !matchesDeletion(req.Status.Deleted, filter.Deleted) {
		return nil, absence.ErrNotFound
	}

	out := req
	return &out, nil
}

func (m *Store) ListRequests(_ context.Context, filter absence.RequestFilter, opts absence.ListOptions) ([]absence.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accepted := filter.Deleted
	if accepted == nil {
		accepted = absence.DefaultDeletionFilter()
	}

	var out []absence.Request
	for _, req := range m.requests {
		if filter.User != "" && req.User.ID != filter.User {
			continue
		}
		if !matchesDeletion(req.Status.Deleted, accepted) {
			continue
		}
		out = append(out, req)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})

	return paginate(out, opts), nil
}

func (m *Store) SaveRequest(_ context.Context, req *absence.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	return nil
}

func paginate[T any](items []T, opts absence.ListOptions) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// =============================================================================
// OVERTIMES AND EVENTS
// =============================================================================

func (m *Store) FindOvertime(_ context.Context, id absence.OvertimeID) (*absence.Overtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ot, ok := m.overtimes[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := ot
	out.EventIDs = append([]absence.EventID(nil), ot.EventIDs...)
	return &out, nil
}

func (m *Store) SaveOvertime(_ context.Context, ot *absence.Overtime) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *ot
	stored.EventIDs = append([]absence.EventID(nil), ot.EventIDs...)
	m.overtimes[ot.ID] = stored
	return nil
}

func (m *Store) FindEvent(_ context.Context, id absence.EventID) (*absence.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := ev
	return &out, nil
}

func (m *Store) SaveEvent(_ context.Context, ev *absence.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = *ev
	return nil
}

// =============================================================================
// PEOPLE
// =============================================================================

func (m *Store) FindUser(_ context.Context, id absence.UserID) (*absence.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := u
	return &out, nil
}

func (m *Store) SaveUser(_ context.Context, u *absence.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *Store) FindDepartment(_ context.Context, id absence.DepartmentID) (*absence.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.departments[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := d
	return &out, nil
}

func (m *Store) SaveDepartment(_ context.Context, d *absence.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = *d
	return nil
}

func (m *Store) FindAccount(_ context.Context, id absence.AccountID) (*absence.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := a
	return &out, nil
}

func (m *Store) SaveAccount(_ context.Context, a *absence.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

func (m *Store) FindRenewal(_ context.Context, id absence.RenewalID) (*absence.RightRenewal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.renewals[id]
	if !ok {
		return nil, absence.ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *Store) SaveRenewal(_ context.Context, r *absence.RightRenewal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renewals[r.ID] = *r
	return nil
}

func (m *Store) ElementsByRenewalAndUser(_ context.Context, renewal absence.RenewalID, user absence.UserID) ([]absence.AbsenceElement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []absence.AbsenceElement
	for _, el := range m.elements {
		if el.RenewalID == renewal && el.UserID == user {
			out = append(out, el)
		}
	}
	return out, nil
}

func (m *Store) SaveElement(_ context.Context, el *absence.AbsenceElement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[el.ID] = *el
	return nil
}

// =============================================================================
// MEMBERSHIPS
// =============================================================================

func (m *Store) MembershipsByAccount(_ context.Context, account absence.AccountID) ([]absence.AccountCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []absence.AccountCollection
	for _, mb := range m.memberships {
		if mb.AccountID == account {
			out = append(out, mb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (m *Store) SaveMembership(_ context.Context, mb *absence.AccountCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships[mb.ID] = *mb
	return nil
}
