package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/absence-engine/absence"
	"github.com/meridian/absence-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_RequestRoundTrip_WithFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	req := &absence.Request{
		ID:       "req-1",
		User:     absence.UserSnapshot{ID: "user-1", Name: "Ada Lovelace", Department: "R & D"},
		Status:   absence.RequestStatus{Deleted: absence.DeletionNone},
		EventIDs: []absence.EventID{"ev-1", "ev-2"},
		Created:  created,
	}
	require.NoError(t, store.SaveRequest(ctx, req))

	// Lookup with default-style filter.
	got, err := store.FindRequest(ctx, "req-1", absence.RequestFilter{
		Deleted: absence.DefaultDeletionFilter(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.User.Name)
	assert.Equal(t, []absence.EventID{"ev-1", "ev-2"}, got.EventIDs)
	assert.True(t, got.Created.Equal(created))

	// User scope excludes other users.
	_, err = store.FindRequest(ctx, "req-1", absence.RequestFilter{User: "user-2"})
	assert.ErrorIs(t, err, absence.ErrNotFound)

	// Soft delete moves the request out of the default filter.
	got.Status.Deleted = absence.DeletionAccepted
	require.NoError(t, store.SaveRequest(ctx, got))

	_, err = store.FindRequest(ctx, "req-1", absence.RequestFilter{
		Deleted: absence.DefaultDeletionFilter(),
	})
	assert.ErrorIs(t, err, absence.ErrNotFound)

	list, err := store.ListRequests(ctx, absence.RequestFilter{
		Deleted: []absence.DeletionStatus{absence.DeletionAccepted},
	}, absence.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLite_ListRequests_SortAndPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	offsets := map[string]int{"a": 0, "b": 1, "c": 2}
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.SaveRequest(ctx, &absence.Request{
			ID:      absence.RequestID(id),
			User:    absence.UserSnapshot{ID: "user-1"},
			Created: base.Add(time.Duration(offsets[id]) * time.Hour),
		}))
	}

	list, err := store.ListRequests(ctx, absence.RequestFilter{}, absence.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, absence.RequestID("a"), list[0].ID)
	assert.Equal(t, absence.RequestID("c"), list[2].ID)

	page, err := store.ListRequests(ctx, absence.RequestFilter{}, absence.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, absence.RequestID("b"), page[0].ID)
}

func TestSQLite_OvertimeAndEvents_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ot := &absence.Overtime{
		ID:       "ot-1",
		User:     absence.UserSnapshot{ID: "user-1", Name: "Ada Lovelace"},
		Quantity: absence.NewQuantity(5.5, absence.UnitHours),
		EventIDs: []absence.EventID{"ev-1"},
		Created:  time.Now(),
	}
	require.NoError(t, store.SaveOvertime(ctx, ot))

	ev := &absence.CalendarEvent{
		ID:       "ev-1",
		User:     absence.UserSnapshot{ID: "user-1", Name: "Ada Lovelace"},
		Start:    time.Date(2025, time.April, 7, 18, 0, 0, 0, time.UTC),
		End:      time.Date(2025, time.April, 7, 21, 0, 0, 0, time.UTC),
		Summary:  "release night",
		Status:   absence.EventConfirmed,
		Overtime: "ot-1",
		Created:  time.Now(),
	}
	require.NoError(t, store.SaveEvent(ctx, ev))

	gotOT, err := store.FindOvertime(ctx, "ot-1")
	require.NoError(t, err)
	assert.True(t, gotOT.Quantity.Equal(absence.NewQuantity(5.5, absence.UnitHours)))
	assert.False(t, gotOT.Settled)

	gotEv, err := store.FindEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, absence.OvertimeID("ot-1"), gotEv.Overtime)
	assert.Equal(t, absence.EventConfirmed, gotEv.Status)
}

func TestSQLite_ElementsByRenewalAndUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, qty := range []int{3, 5, 2} {
		require.NoError(t, store.SaveElement(ctx, &absence.AbsenceElement{
			ID:               absence.ElementID(rune('a' + i)),
			RenewalID:        "ren-2025",
			UserID:           "user-1",
			ConsumedQuantity: absence.NewQuantityFromInt(qty, absence.UnitDays),
			RequestStatus:    absence.WorkflowAccepted,
		}))
	}
	// Another user's element for the same renewal.
	require.NoError(t, store.SaveElement(ctx, &absence.AbsenceElement{
		ID: "other", RenewalID: "ren-2025", UserID: "user-2",
		ConsumedQuantity: absence.NewQuantityFromInt(7, absence.UnitDays),
		RequestStatus:    absence.WorkflowAccepted,
	}))

	elements, err := store.ElementsByRenewalAndUser(ctx, "ren-2025", "user-1")
	require.NoError(t, err)
	assert.Len(t, elements, 3)
}

func TestSQLite_Memberships_SortedWithNullableEnd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	next := dec.AddDate(0, 0, 1)

	require.NoError(t, store.SaveMembership(ctx, &absence.AccountCollection{
		ID: "m-2", AccountID: "acc-1", CollectionID: "col-senior",
		Period:  absence.Period{Start: next},
		Created: time.Now(),
	}))
	require.NoError(t, store.SaveMembership(ctx, &absence.AccountCollection{
		ID: "m-1", AccountID: "acc-1", CollectionID: "col-std",
		Period:  absence.Period{Start: jan, End: &dec},
		Created: time.Now(),
	}))

	list, err := store.MembershipsByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, absence.MembershipID("m-1"), list[0].ID)
	require.NotNil(t, list[0].End)
	assert.Nil(t, list[1].End, "open-ended period has no end date")
}

func TestSQLite_UserAndDepartment_Ancestors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDepartment(ctx, &absence.Department{ID: "dep-fr", Name: "France"}))
	require.NoError(t, store.SaveDepartment(ctx, &absence.Department{ID: "dep-rd", Name: "R & D", Parent: "dep-fr"}))
	require.NoError(t, store.SaveUser(ctx, &absence.User{ID: "user-1", Name: "Ada Lovelace", Department: "dep-rd", Created: time.Now()}))

	user, err := store.FindUser(ctx, "user-1")
	require.NoError(t, err)

	chain, err := absence.DepartmentAncestors(ctx, store, user)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "R & D", chain[0].Name)
	assert.Equal(t, "France", chain[1].Name)
}
