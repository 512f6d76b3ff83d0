package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// RENEWAL SERVICE - Right renewal lookups
// =============================================================================

type RenewalService struct {
	Renewals absence.RenewalRepository
	Log      zerolog.Logger
}

func NewRenewalService(renewals absence.RenewalRepository, log zerolog.Logger) *RenewalService {
	return &RenewalService{Renewals: renewals, Log: log}
}

// Get fetches a right renewal by id. Fails with absence.ErrNotFound when the
// renewal period does not exist.
func (s *RenewalService) Get(ctx context.Context, id absence.RenewalID) (*absence.RightRenewal, error) {
	renewal, err := s.Renewals.FindRenewal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load renewal %s: %w", id, err)
	}
	return renewal, nil
}
