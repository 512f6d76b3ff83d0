/*
balances.go - User-facing entitlement balance views

PURPOSE:
  Aggregates the accounting facade's quantity kinds into one view for one
  (account, renewal) pair. Available quantity appears only when a grant
  quantity resolver is configured; the engine does not guess a default.
*/
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// BALANCE VIEW
// =============================================================================

// BalanceView is what the UI shows for one renewal of one account.
type BalanceView struct {
	Account   absence.AccountID `json:"account"`
	Renewal   absence.RenewalID `json:"renewal"`
	Consumed  absence.Quantity  `json:"consumed"`
	Waiting   absence.Quantity  `json:"waiting"`
	Confirmed absence.Quantity  `json:"confirmed"`

	// Available is nil when no quantity resolver is configured.
	Available *absence.Quantity `json:"available,omitempty"`
}

// =============================================================================
// BALANCE SERVICE
// =============================================================================

type BalanceService struct {
	Accounts absence.AccountRepository
	Renewals absence.RenewalRepository
	Elements absence.ElementReader

	// Resolver is optional; see absence.AccountRight.
	Resolver absence.QuantityResolver

	Log zerolog.Logger
}

func NewBalanceService(
	accounts absence.AccountRepository,
	renewals absence.RenewalRepository,
	elements absence.ElementReader,
	log zerolog.Logger,
) *BalanceService {
	return &BalanceService{Accounts: accounts, Renewals: renewals, Elements: elements, Log: log}
}

// View computes the balance view for an account on a renewal. Fails with a
// lookup error when either reference cannot be resolved.
func (s *BalanceService) View(ctx context.Context, accountID absence.AccountID, renewalID absence.RenewalID) (*BalanceView, error) {
	account, err := s.Accounts.FindAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s", absence.ErrLookup, accountID)
	}

	renewal, err := s.Renewals.FindRenewal(ctx, renewalID)
	if err != nil {
		return nil, fmt.Errorf("%w: renewal %s", absence.ErrLookup, renewalID)
	}

	right := absence.NewAccountRight(*account, *renewal, s.Elements)
	right.Resolver = s.Resolver

	view := &BalanceView{Account: accountID, Renewal: renewalID}

	if view.Consumed, err = right.ConsumedQuantity(ctx); err != nil {
		return nil, err
	}
	if view.Waiting, err = right.WaitingQuantity(ctx); err != nil {
		return nil, err
	}
	if view.Confirmed, err = right.ConfirmedQuantity(ctx); err != nil {
		return nil, err
	}

	available, err := right.AvailableQuantity(ctx)
	switch {
	case err == nil:
		view.Available = &available
	case errors.Is(err, absence.ErrNotImplemented):
		// No resolver configured; the view simply omits the field.
	default:
		return nil, err
	}

	return view, nil
}
