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

func membership(account, collection string, start time.Time, end *time.Time) absence.AccountCollection {
	return absence.AccountCollection{
		AccountID:    absence.AccountID(account),
		CollectionID: absence.CollectionID(collection),
		Period:       absence.Period{Start: start, End: end},
	}
}

func endOf(t time.Time) *time.Time { return &t }

func TestMembershipSave_ValidSequence(t *testing.T) {
	store := memory.New()
	svc := service.NewMembershipService(store, zerolog.Nop())
	ctx := context.Background()

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	env, err := svc.Save(ctx, membership("acc-1", "col-std", jan, endOf(dec)))
	require.NoError(t, err)
	assert.True(t, env.Outcome.Success)
	assert.NotEmpty(t, env.Data.ID, "a fresh membership gets a generated id")

	// Open-ended follow-up period starting after the closed one.
	_, err = svc.Save(ctx, membership("acc-1", "col-senior", dec.AddDate(0, 0, 1), nil))
	assert.NoError(t, err)
}

func TestMembershipSave_OverlapRejected_NotPersisted(t *testing.T) {
	// GIVEN: An existing Jan-Mar membership
	// WHEN: Saving a Feb-Apr membership for the same account
	// THEN: The overlap error surfaces and nothing is written

	store := memory.New()
	svc := service.NewMembershipService(store, zerolog.Nop())
	ctx := context.Background()

	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Save(ctx, membership("acc-1", "col-std", jan, endOf(mar)))
	require.NoError(t, err)

	_, err = svc.Save(ctx, membership("acc-1", "col-std", feb, endOf(apr)))
	assert.ErrorIs(t, err, absence.ErrPeriodOverlap)

	siblings, err := store.MembershipsByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "rejected membership must not be persisted")
}

func TestMembershipSave_UpdateOpenPeriod_Allowed(t *testing.T) {
	// Updating the currently open period is the one case where an open
	// sibling does not block the write.
	store := memory.New()
	svc := service.NewMembershipService(store, zerolog.Nop())
	ctx := context.Background()

	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	env, err := svc.Save(ctx, membership("acc-1", "col-std", jan, nil))
	require.NoError(t, err)

	update := *env.Data
	update.End = endOf(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))

	_, err = svc.Save(ctx, update)
	assert.NoError(t, err)
}

func TestMembershipSave_DifferentAccountsDoNotInterfere(t *testing.T) {
	store := memory.New()
	svc := service.NewMembershipService(store, zerolog.Nop())
	ctx := context.Background()

	jan := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Save(ctx, membership("acc-1", "col-std", jan, nil))
	require.NoError(t, err)

	// Same open period on another account is fine.
	_, err = svc.Save(ctx, membership("acc-2", "col-std", jan, nil))
	assert.NoError(t, err)
}

func TestMembershipSave_MissingFields(t *testing.T) {
	svc := service.NewMembershipService(memory.New(), zerolog.Nop())

	_, err := svc.Save(context.Background(), absence.AccountCollection{})
	require.Error(t, err)
	assert.ErrorIs(t, err, absence.ErrValidation)

	var missing *absence.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"account", "rightCollection"}, missing.Fields)
}
