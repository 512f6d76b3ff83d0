package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian/absence-engine/absence"
	"github.com/meridian/absence-engine/service"
	"github.com/meridian/absence-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newOvertimeFixture(t *testing.T) (*service.OvertimeService, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveDepartment(ctx, &absence.Department{ID: "dep-rd", Name: "R & D"}))
	require.NoError(t, store.SaveUser(ctx, &absence.User{
		ID:         "user-1",
		Name:       "Ada Lovelace",
		Department: "dep-rd",
	}))

	svc := service.NewOvertimeService(store, store, store, store, zerolog.Nop())
	return svc, store
}

func twoEventParams() []service.EventParams {
	start := time.Date(2025, time.April, 7, 18, 0, 0, 0, time.UTC)
	return []service.EventParams{
		{Start: start, End: start.Add(2 * time.Hour), Summary: "release night", User: "user-1"},
		{Start: start.Add(24 * time.Hour), End: start.Add(27 * time.Hour), Summary: "hotfix", User: "user-1"},
	}
}

// =============================================================================
// CREATE
// =============================================================================

func TestOvertimeSave_Create_PersistsEventsAndBacklinks(t *testing.T) {
	// GIVEN: Save params with two events
	// WHEN: Creating the overtime
	// THEN: Both events are persisted, both back-linked to the created
	//       overtime, and the operation resolves with a success outcome

	svc, store := newOvertimeFixture(t)
	ctx := context.Background()

	env, err := svc.Save(ctx, service.SaveOvertimeParams{
		User:     "user-1",
		Quantity: 5,
		Events:   twoEventParams(),
	})
	require.NoError(t, err)

	assert.True(t, env.Outcome.Success)
	assert.Equal(t, "The overtime has been created", env.Outcome.Message)

	overtime := env.Data
	require.Len(t, overtime.EventIDs, 2)

	// The overtime is retrievable by id with the user snapshot applied.
	stored, err := store.FindOvertime(ctx, overtime.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.User.Name)
	assert.Equal(t, "R & D", stored.User.Department)
	assert.False(t, stored.Settled)

	// Every event ended up back-linked and confirmed.
	for _, id := range stored.EventIDs {
		ev, err := store.FindEvent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, overtime.ID, ev.Overtime)
		assert.Equal(t, absence.EventConfirmed, ev.Status)
		assert.Equal(t, absence.UserID("user-1"), ev.User.ID)
	}
}

func TestOvertimeSave_Create_UserWithoutDepartment(t *testing.T) {
	svc, store := newOvertimeFixture(t)
	ctx := context.Background()
	require.NoError(t, store.SaveUser(ctx, &absence.User{ID: "user-2", Name: "Blaise Pascal"}))

	params := service.SaveOvertimeParams{User: "user-2", Quantity: 2, Events: twoEventParams()[:1]}
	env, err := svc.Save(ctx, params)
	require.NoError(t, err)

	assert.Empty(t, env.Data.User.Department)
}

func TestOvertimeSave_UnknownUser_Fails(t *testing.T) {
	svc, _ := newOvertimeFixture(t)

	_, err := svc.Save(context.Background(), service.SaveOvertimeParams{
		User:     "ghost",
		Quantity: 2,
		Events:   twoEventParams(),
	})
	assert.ErrorIs(t, err, absence.ErrNotFound)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestOvertimeSave_MissingRequiredFields(t *testing.T) {
	svc, _ := newOvertimeFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params service.SaveOvertimeParams
	}{
		{"no user", service.SaveOvertimeParams{Quantity: 2, Events: twoEventParams()}},
		{"no quantity", service.SaveOvertimeParams{User: "user-1", Events: twoEventParams()}},
		{"no events", service.SaveOvertimeParams{User: "user-1", Quantity: 2}},
		{"empty events", service.SaveOvertimeParams{User: "user-1", Quantity: 2, Events: []service.EventParams{}}},
		{"event missing summary", service.SaveOvertimeParams{
			User: "user-1", Quantity: 2,
			Events: []service.EventParams{{
				Start: time.Now(), End: time.Now().Add(time.Hour), User: "user-1",
			}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, absence.ErrValidation)
		})
	}
}

// =============================================================================
// UPDATE AND SETTLED IMMUTABILITY
// =============================================================================

func TestOvertimeSave_Update_MergesFields(t *testing.T) {
	svc, store := newOvertimeFixture(t)
	ctx := context.Background()

	env, err := svc.Save(ctx, service.SaveOvertimeParams{User: "user-1", Quantity: 5, Events: twoEventParams()})
	require.NoError(t, err)
	id := env.Data.ID

	updated, err := svc.Save(ctx, service.SaveOvertimeParams{
		ID: id, User: "user-1", Quantity: 7, Settled: true, Events: twoEventParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, "The overtime has been updated", updated.Outcome.Message)
	assert.True(t, updated.Data.Settled)

	stored, err := store.FindOvertime(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(absence.NewQuantity(7, absence.UnitHours)))
}

func TestOvertimeSave_Settled_Immutable(t *testing.T) {
	// GIVEN: An overtime already settled
	// WHEN: Saving any field change
	// THEN: Fails with the settled-immutable error and the stored quantity
	//       is unchanged

	svc, store := newOvertimeFixture(t)
	ctx := context.Background()

	settled := &absence.Overtime{
		ID:       "ot-settled",
		User:     absence.UserSnapshot{ID: "user-1", Name: "Ada Lovelace"},
		Quantity: absence.NewQuantity(5, absence.UnitHours),
		Settled:  true,
		Created:  time.Now(),
	}
	require.NoError(t, store.SaveOvertime(ctx, settled))

	_, err := svc.Save(ctx, service.SaveOvertimeParams{
		ID: "ot-settled", User: "user-1", Quantity: 9, Events: twoEventParams(),
	})
	assert.ErrorIs(t, err, absence.ErrSettledImmutable)

	stored, err := store.FindOvertime(ctx, "ot-settled")
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(absence.NewQuantity(5, absence.UnitHours)), "quantity must be unchanged")
}
