/*
memberships.go - Account collection membership writes

PURPOSE:
  A membership places an account in a right collection for a validity
  period. Before every insert or update the account's full sibling set is
  re-read and the candidate validated against the period invariants; the
  write proceeds only when validation passes.

  The read-validate-write sequence is not wrapped in a transaction.
  Concurrent writers on the same account can both pass validation; the
  store's unique index is the only backstop.
*/
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// MEMBERSHIP SERVICE
// =============================================================================

type MembershipService struct {
	Memberships absence.MembershipRepository
	Log         zerolog.Logger
}

func NewMembershipService(memberships absence.MembershipRepository, log zerolog.Logger) *MembershipService {
	return &MembershipService{Memberships: memberships, Log: log}
}

// Save validates the candidate period against the account's existing
// memberships and persists it. A zero ID creates a new membership; a known
// ID updates it (the candidate is skipped when checking itself).
func (s *MembershipService) Save(ctx context.Context, m absence.AccountCollection) (*Envelope[*absence.AccountCollection], error) {
	if m.AccountID == "" || m.CollectionID == "" {
		return nil, &absence.MissingFieldsError{Fields: missingMembershipFields(m)}
	}

	siblings, err := s.Memberships.MembershipsByAccount(ctx, m.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load memberships for account %s: %w", m.AccountID, err)
	}

	if m.ID == "" {
		m.ID = absence.MembershipID(uuid.NewString())
		m.Created = time.Now()
	}

	if err := absence.ValidatePeriods(siblings, m); err != nil {
		return nil, err
	}

	if err := s.Memberships.SaveMembership(ctx, &m); err != nil {
		return nil, fmt.Errorf("save membership %s: %w", m.ID, err)
	}

	s.Log.Info().
		Str("membership", string(m.ID)).
		Str("account", string(m.AccountID)).
		Str("period", m.Period.String()).
		Msg("membership saved")

	return Resolved(&m, "The collection period has been saved"), nil
}

func missingMembershipFields(m absence.AccountCollection) []string {
	var fields []string
	if m.AccountID == "" {
		fields = append(fields, "account")
	}
	if m.CollectionID == "" {
		fields = append(fields, "rightCollection")
	}
	return fields
}
