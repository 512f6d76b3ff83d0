/*
accounting.go - Entitlement accounting over the absence-element ledger

PURPOSE:
  Answers "how much of this renewal has this account consumed, and how much
  is left?" by aggregating absence elements. The facade only reads the
  ledger; elements are owned by the request lifecycle and never mutated here.

QUANTITY KINDS:
  Consumed:  every element charged against the renewal, whatever the state
             of the owning request
  Waiting:   elements whose owning request is still awaiting approval
  Confirmed: elements whose owning request was accepted
  Available: grant quantity minus consumed

GRANT QUANTITY:
  The grant quantity for a (account, renewal) pair depends on rules outside
  this package (beneficiary-specific override vs. collection default). The
  facade does not guess: AvailableQuantity requires a QuantityResolver and
  fails with ErrNotImplemented when none is configured.

SEE ALSO:
  - types.go: AbsenceElement, RightRenewal
  - service/balances.go: Exposes these aggregates to the API
*/
package absence

import "context"

// =============================================================================
// LEDGER READ ACCESS
// =============================================================================

// ElementReader is the ledger query capability the facade needs. Implemented
// by the store packages.
type ElementReader interface {
	// ElementsByRenewalAndUser returns every element charged against the
	// renewal by the user. Order is not significant; sums are commutative.
	ElementsByRenewalAndUser(ctx context.Context, renewal RenewalID, user UserID) ([]AbsenceElement, error)
}

// QuantityResolver supplies the grant quantity for an account on a renewal.
// Integrators decide the resolution rule (beneficiary override vs. collection
// default); the accounting facade stays agnostic.
type QuantityResolver interface {
	GrantQuantity(ctx context.Context, account Account, renewal RightRenewal) (Quantity, error)
}

// QuantityResolverFunc adapts a function to the QuantityResolver interface.
type QuantityResolverFunc func(ctx context.Context, account Account, renewal RightRenewal) (Quantity, error)

func (f QuantityResolverFunc) GrantQuantity(ctx context.Context, account Account, renewal RightRenewal) (Quantity, error) {
	return f(ctx, account, renewal)
}

// =============================================================================
// ACCOUNT RIGHT - Accounting facade bound to one (account, renewal) pair
// =============================================================================

// AccountRight aggregates ledger quantities for one account on one renewal.
type AccountRight struct {
	Account  Account
	Renewal  RightRenewal
	Elements ElementReader

	// Resolver is optional. Without it AvailableQuantity fails with
	// ErrNotImplemented.
	Resolver QuantityResolver

	// Unit for zero values when the ledger is empty.
	Unit Unit
}

// NewAccountRight binds the facade to an account and a renewal.
func NewAccountRight(account Account, renewal RightRenewal, elements ElementReader) *AccountRight {
	return &AccountRight{Account: account, Renewal: renewal, Elements: elements, Unit: UnitDays}
}

func (ar *AccountRight) load(ctx context.Context) ([]AbsenceElement, error) {
	if ar.Elements == nil || ar.Renewal.ID == "" || ar.Account.UserID == "" {
		return nil, ErrLookup
	}
	return ar.Elements.ElementsByRenewalAndUser(ctx, ar.Renewal.ID, ar.Account.UserID)
}

func (ar *AccountRight) sum(elements []AbsenceElement, keep func(AbsenceElement) bool) Quantity {
	total := ZeroQuantity(ar.Unit)
	for _, el := range elements {
		if keep == nil || keep(el) {
			total = total.Add(el.ConsumedQuantity)
		}
	}
	return total
}

// ConsumedQuantity is the sum of consumed quantities over all elements for
// this renewal and user. An empty ledger yields zero, not an error.
func (ar *AccountRight) ConsumedQuantity(ctx context.Context) (Quantity, error) {
	elements, err := ar.load(ctx)
	if err != nil {
		return Quantity{}, err
	}
	return ar.sum(elements, nil), nil
}

// WaitingQuantity is the consumed sum restricted to elements whose owning
// request is still awaiting approval.
func (ar *AccountRight) WaitingQuantity(ctx context.Context) (Quantity, error) {
	elements, err := ar.load(ctx)
	if err != nil {
		return Quantity{}, err
	}
	return ar.sum(elements, func(el AbsenceElement) bool {
		return el.RequestStatus == WorkflowWaiting
	}), nil
}

// ConfirmedQuantity is the consumed sum restricted to elements whose owning
// request was accepted.
func (ar *AccountRight) ConfirmedQuantity(ctx context.Context) (Quantity, error) {
	elements, err := ar.load(ctx)
	if err != nil {
		return Quantity{}, err
	}
	return ar.sum(elements, func(el AbsenceElement) bool {
		return el.RequestStatus == WorkflowAccepted
	}), nil
}

// AvailableQuantity is the grant quantity minus the consumed quantity.
// Requires a QuantityResolver; fails with ErrNotImplemented otherwise.
func (ar *AccountRight) AvailableQuantity(ctx context.Context) (Quantity, error) {
	if ar.Resolver == nil {
		return Quantity{}, ErrNotImplemented
	}

	grant, err := ar.Resolver.GrantQuantity(ctx, ar.Account, ar.Renewal)
	if err != nil {
		return Quantity{}, err
	}

	consumed, err := ar.ConsumedQuantity(ctx)
	if err != nil {
		return Quantity{}, err
	}

	return grant.Sub(consumed), nil
}
