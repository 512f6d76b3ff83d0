/*
requests.go - Leave request listing and soft deletion

PURPOSE:
  Requests are never physically removed; deletion flips the status flag and
  the default listing filter hides deleted documents. Listing annotates
  every row with its computed display-status title.

FLOW (delete):
  1. Load the request by id with the non-deleted filter, optionally scoped
     to the requesting user for authorization
  2. Flip the deleted flag
  3. Persist and resolve with the updated document + success outcome

A second delete of the same request fails with a not-found error: the first
delete moved it out of the non-deleted filter.
*/
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// REQUEST SERVICE
// =============================================================================

type RequestService struct {
	Requests absence.RequestRepository
	Log      zerolog.Logger
}

func NewRequestService(requests absence.RequestRepository, log zerolog.Logger) *RequestService {
	return &RequestService{Requests: requests, Log: log}
}

// Delete soft-deletes a request. When scopingUser is non-empty the lookup is
// restricted to requests created by that user, so a requester cannot delete
// someone else's request. Fails with absence.ErrNotFound when no matching,
// non-deleted request exists.
func (s *RequestService) Delete(ctx context.Context, id absence.RequestID, scopingUser absence.UserID) (*Envelope[*absence.Request], error) {
	filter := absence.RequestFilter{
		User:    scopingUser,
		Deleted: []absence.DeletionStatus{absence.DeletionNone, absence.DeletionWaiting},
	}

	req, err := s.Requests.FindRequest(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", id, err)
	}

	req.Status.Deleted = absence.DeletionAccepted
	if err := s.Requests.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save request %s: %w", id, err)
	}

	s.Log.Info().
		Str("request", string(id)).
		Str("user", string(req.User.ID)).
		Msg("request deleted")

	req.Status.Title = req.DisplayStatus()
	return Resolved(req, "The request has been deleted"), nil
}

// List returns requests matching the filter, sorted by creation time, each
// annotated with its display-status title. A nil Deleted filter defaults to
// active-or-waiting-deletion requests; callers may override it with an
// explicit set of accepted values. The optional pagination transform is
// applied to the query before execution.
func (s *RequestService) List(ctx context.Context, filter absence.RequestFilter, opts absence.ListOptions) ([]absence.Request, error) {
	if filter.Deleted == nil {
		filter.Deleted = absence.DefaultDeletionFilter()
	}

	requests, err := s.Requests.ListRequests(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	for i := range requests {
		requests[i].Status.Title = requests[i].DisplayStatus()
	}
	return requests, nil
}
