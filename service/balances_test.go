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

func newBalanceFixture(t *testing.T) (*service.BalanceService, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, &absence.Account{ID: "acc-1", UserID: "user-1"}))
	require.NoError(t, store.SaveRenewal(ctx, &absence.RightRenewal{
		ID:      "ren-2025",
		RightID: "annual-leave",
		Start:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
	}))

	return service.NewBalanceService(store, store, store, zerolog.Nop()), store
}

func seedElement(t *testing.T, store *memory.Store, id string, qty int, status absence.RequestWorkflowStatus) {
	t.Helper()
	require.NoError(t, store.SaveElement(context.Background(), &absence.AbsenceElement{
		ID:               absence.ElementID(id),
		RenewalID:        "ren-2025",
		UserID:           "user-1",
		ConsumedQuantity: absence.NewQuantityFromInt(qty, absence.UnitDays),
		RequestStatus:    status,
	}))
}

func TestBalanceView_AggregatesLedger(t *testing.T) {
	svc, store := newBalanceFixture(t)
	seedElement(t, store, "el-1", 3, absence.WorkflowAccepted)
	seedElement(t, store, "el-2", 5, absence.WorkflowWaiting)
	seedElement(t, store, "el-3", 2, absence.WorkflowAccepted)

	view, err := svc.View(context.Background(), "acc-1", "ren-2025")
	require.NoError(t, err)

	assert.True(t, view.Consumed.Equal(absence.NewQuantityFromInt(10, absence.UnitDays)))
	assert.True(t, view.Waiting.Equal(absence.NewQuantityFromInt(5, absence.UnitDays)))
	assert.True(t, view.Confirmed.Equal(absence.NewQuantityFromInt(5, absence.UnitDays)))
	assert.Nil(t, view.Available, "no resolver configured")
}

func TestBalanceView_WithResolver_ComputesAvailable(t *testing.T) {
	svc, store := newBalanceFixture(t)
	seedElement(t, store, "el-1", 4, absence.WorkflowAccepted)
	svc.Resolver = absence.QuantityResolverFunc(
		func(context.Context, absence.Account, absence.RightRenewal) (absence.Quantity, error) {
			return absence.NewQuantityFromInt(25, absence.UnitDays), nil
		})

	view, err := svc.View(context.Background(), "acc-1", "ren-2025")
	require.NoError(t, err)

	require.NotNil(t, view.Available)
	assert.True(t, view.Available.Equal(absence.NewQuantityFromInt(21, absence.UnitDays)))
}

func TestBalanceView_UnresolvedReferences_LookupError(t *testing.T) {
	svc, _ := newBalanceFixture(t)

	_, err := svc.View(context.Background(), "acc-ghost", "ren-2025")
	assert.ErrorIs(t, err, absence.ErrLookup)

	_, err = svc.View(context.Background(), "acc-1", "ren-ghost")
	assert.ErrorIs(t, err, absence.ErrLookup)
}
