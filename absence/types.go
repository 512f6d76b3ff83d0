/*
Package absence provides the core domain model for the leave-management engine.

PURPOSE:
  This package contains the domain documents and pure logic shared by every
  service: quantities, validity periods, the absence-element ledger and the
  entitlement accounting facade built on top of it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity: An amount of leave with a unit (e.g., 5 days, 3 hours)
  - User / Department / Account: The people side of the model
  - RightRenewal: A recurring grant window for an entitlement ("right")
  - AbsenceElement: An immutable ledger entry recording consumption
  - UserSnapshot: Denormalized name/department taken at save time

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Type Safety: Strong typing for IDs prevents mixing document kinds
  3. Snapshots over joins: Documents embed the user name/department as it
     was at save time; later user changes do not rewrite history

SEE ALSO:
  - period.go: Validity periods and ordering
  - overlap.go: Period admissibility rules
  - accounting.go: Quantity aggregation over the ledger
*/
package absence

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY - Amount of leave with a unit
// =============================================================================

type Quantity struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

func NewQuantity(value float64, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewQuantityFromInt(value int, unit Unit) Quantity {
	return Quantity{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func ZeroQuantity(unit Unit) Quantity {
	return Quantity{Value: decimal.Zero, Unit: unit}
}

func (q Quantity) Add(b Quantity) Quantity      { return Quantity{Value: q.Value.Add(b.Value), Unit: q.Unit} }
func (q Quantity) Sub(b Quantity) Quantity      { return Quantity{Value: q.Value.Sub(b.Value), Unit: q.Unit} }
func (q Quantity) Neg() Quantity                { return Quantity{Value: q.Value.Neg(), Unit: q.Unit} }
func (q Quantity) IsZero() bool                 { return q.Value.IsZero() }
func (q Quantity) IsNegative() bool             { return q.Value.IsNegative() }
func (q Quantity) IsPositive() bool             { return q.Value.IsPositive() }
func (q Quantity) GreaterThan(b Quantity) bool  { return q.Value.GreaterThan(b.Value) }
func (q Quantity) LessThan(b Quantity) bool     { return q.Value.LessThan(b.Value) }
func (q Quantity) Equal(b Quantity) bool        { return q.Value.Equal(b.Value) }
func (q Quantity) String() string               { return q.Value.String() + " " + string(q.Unit) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type AccountID string
type DepartmentID string
type CollectionID string
type RenewalID string
type ElementID string
type RequestID string
type OvertimeID string
type EventID string
type MembershipID string

// =============================================================================
// PEOPLE - Users, departments, accounts
// =============================================================================

// User is a person known to the system. A user optionally carries an Account
// (the absence-tracking role) and belongs to at most one Department.
type User struct {
	ID         UserID
	Name       string
	Email      string
	Department DepartmentID // empty = no department
	AccountID  AccountID    // empty = no absence account
	Created    time.Time
}

// Department is a node in the company hierarchy. Parent is empty for roots.
type Department struct {
	ID     DepartmentID
	Name   string
	Parent DepartmentID
}

// Account is the absence-tracking role attached to a user. Right-collection
// memberships and absence elements hang off the account.
type Account struct {
	ID      AccountID
	UserID  UserID
	Created time.Time
}

// UserSnapshot is the denormalized user identity embedded in requests,
// overtimes and calendar events. Taken at save time; NOT kept in sync with
// later user or department changes.
type UserSnapshot struct {
	ID         UserID `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// =============================================================================
// ENTITLEMENTS - Rights, renewals, and the consumption ledger
// =============================================================================

// RightRenewal is one grant window of an entitlement. A right renews
// periodically (typically yearly); each renewal is a separate window against
// which consumption is recorded. Immutable once referenced by elements.
type RightRenewal struct {
	ID      RenewalID
	RightID string
	Start   time.Time
	End     time.Time
}

// AbsenceElement is a ledger entry: a part of a leave request consuming
// quantity from one right renewal. Elements are owned by the request
// lifecycle and are read-only to the accounting facade.
type AbsenceElement struct {
	ID               ElementID
	RenewalID        RenewalID
	UserID           UserID
	ConsumedQuantity Quantity

	// RequestStatus is a snapshot of the owning request's workflow status,
	// maintained by the request lifecycle when the request moves.
	RequestStatus RequestWorkflowStatus
}

// RequestWorkflowStatus is the approval state of the request that owns a
// ledger element.
type RequestWorkflowStatus string

const (
	WorkflowWaiting  RequestWorkflowStatus = "waiting"
	WorkflowAccepted RequestWorkflowStatus = "accepted"
	WorkflowRejected RequestWorkflowStatus = "rejected"
)
