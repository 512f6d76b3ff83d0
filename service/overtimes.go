/*
overtimes.go - Overtime creation and update

PURPOSE:
  An overtime records extra worked hours, backed by calendar events. On
  creation the events are persisted first, then the overtime, then the
  events are back-linked to it. Once an overtime is settled it can no
  longer be modified.

CREATE FLOW:
  1. Validate params: user, quantity and at least one event required,
     each event needs start/end/summary/user
  2. Load the target user with department (snapshot source)
  3. Fan out: persist every event concurrently (status CONFIRMED, empty
     overtime ref), join before proceeding
  4. Create the overtime with the user name/department snapshot
  5. Fan out: back-link every event to the overtime id, join

The three persistence steps are NOT atomic. A failure after step 3 leaves
orphaned events with no parent overtime; there is no rollback here. A
transactional store or a compensating cleanup would close that gap.

UPDATE FLOW:
  Load by id; refuse with a settled-immutable error when Settled is already
  true; otherwise merge the provided fields and persist.
*/
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meridian/absence-engine/absence"
)

// =============================================================================
// PARAMETERS
// =============================================================================

// EventParams describes one calendar event to create with the overtime.
type EventParams struct {
	Start   time.Time      `json:"dtstart" validate:"required"`
	End     time.Time      `json:"dtend" validate:"required"`
	Summary string         `json:"summary" validate:"required"`
	User    absence.UserID `json:"user" validate:"required"`
}

// SaveOvertimeParams is the save-service input. An empty ID creates a new
// overtime; a non-empty ID updates an existing one.
type SaveOvertimeParams struct {
	ID       absence.OvertimeID `json:"id"`
	User     absence.UserID     `json:"user" validate:"required"`
	Quantity float64            `json:"quantity" validate:"required,gt=0"`
	Settled  bool               `json:"settled"`
	Events   []EventParams      `json:"events" validate:"required,min=1,dive"`
}

// =============================================================================
// OVERTIME SERVICE
// =============================================================================

type OvertimeService struct {
	Overtimes   absence.OvertimeRepository
	Events      absence.EventRepository
	Users       absence.UserRepository
	Departments absence.DepartmentRepository
	Log         zerolog.Logger
}

func NewOvertimeService(
	overtimes absence.OvertimeRepository,
	events absence.EventRepository,
	users absence.UserRepository,
	departments absence.DepartmentRepository,
	log zerolog.Logger,
) *OvertimeService {
	return &OvertimeService{
		Overtimes:   overtimes,
		Events:      events,
		Users:       users,
		Departments: departments,
		Log:         log,
	}
}

// Get loads one overtime by id.
func (s *OvertimeService) Get(ctx context.Context, id absence.OvertimeID) (*absence.Overtime, error) {
	return s.Overtimes.FindOvertime(ctx, id)
}

// Save creates or updates an overtime. See the package comment for the flow
// and the atomicity caveat.
func (s *OvertimeService) Save(ctx context.Context, params SaveOvertimeParams) (*Envelope[*absence.Overtime], error) {
	if err := checkRequiredFields(params); err != nil {
		return nil, err
	}

	snapshot, err := s.userSnapshot(ctx, params.User)
	if err != nil {
		return nil, err
	}

	if params.ID != "" {
		return s.update(ctx, params, snapshot)
	}
	return s.create(ctx, params, snapshot)
}

// userSnapshot loads the target user and denormalizes name/department. The
// snapshot is taken at save time and is not kept in sync with later user
// changes.
func (s *OvertimeService) userSnapshot(ctx context.Context, id absence.UserID) (absence.UserSnapshot, error) {
	user, err := s.Users.FindUser(ctx, id)
	if err != nil {
		return absence.UserSnapshot{}, fmt.Errorf("load user %s: %w", id, err)
	}

	snapshot := absence.UserSnapshot{ID: user.ID, Name: user.Name}
	if user.Department != "" {
		dep, err := s.Departments.FindDepartment(ctx, user.Department)
		if err != nil && !absence.IsNotFound(err) {
			return absence.UserSnapshot{}, fmt.Errorf("load department %s: %w", user.Department, err)
		}
		if dep != nil {
			snapshot.Department = dep.Name
		}
	}
	return snapshot, nil
}

func (s *OvertimeService) create(ctx context.Context, params SaveOvertimeParams, snapshot absence.UserSnapshot) (*Envelope[*absence.Overtime], error) {
	// Fan out the event creations; all must land before the overtime is
	// created.
	events := make([]*absence.CalendarEvent, len(params.Events))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range params.Events {
		i, ep := i, ep
		g.Go(func() error {
			ev := &absence.CalendarEvent{
				ID:      absence.EventID(uuid.NewString()),
				User:    snapshot,
				Start:   ep.Start,
				End:     ep.End,
				Summary: ep.Summary,
				Status:  absence.EventConfirmed,
				Created: time.Now(),
			}
			if err := s.Events.SaveEvent(gctx, ev); err != nil {
				return fmt.Errorf("save event %q: %w", ep.Summary, err)
			}
			events[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overtime := &absence.Overtime{
		ID:       absence.OvertimeID(uuid.NewString()),
		User:     snapshot,
		Quantity: absence.NewQuantity(params.Quantity, absence.UnitHours),
		Settled:  params.Settled,
		Created:  time.Now(),
	}
	for _, ev := range events {
		overtime.EventIDs = append(overtime.EventIDs, ev.ID)
	}
	if err := s.Overtimes.SaveOvertime(ctx, overtime); err != nil {
		return nil, fmt.Errorf("save overtime: %w", err)
	}

	// Back-link the events; all must land before the operation resolves.
	g, gctx = errgroup.WithContext(ctx)
	for _, ev := range events {
		ev := ev
		g.Go(func() error {
			ev.Overtime = overtime.ID
			return s.Events.SaveEvent(gctx, ev)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("link events to overtime %s: %w", overtime.ID, err)
	}

	s.Log.Info().
		Str("overtime", string(overtime.ID)).
		Str("user", string(snapshot.ID)).
		Int("events", len(events)).
		Msg("overtime created")

	return Resolved(overtime, "The overtime has been created"), nil
}

func (s *OvertimeService) update(ctx context.Context, params SaveOvertimeParams, snapshot absence.UserSnapshot) (*Envelope[*absence.Overtime], error) {
	overtime, err := s.Overtimes.FindOvertime(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("load overtime %s: %w", params.ID, err)
	}

	if overtime.Settled {
		return nil, absence.ErrSettledImmutable
	}

	overtime.User = snapshot
	overtime.Quantity = absence.NewQuantity(params.Quantity, absence.UnitHours)
	if params.Settled {
		overtime.Settled = true
	}

	if err := s.Overtimes.SaveOvertime(ctx, overtime); err != nil {
		return nil, fmt.Errorf("save overtime %s: %w", params.ID, err)
	}

	s.Log.Info().
		Str("overtime", string(overtime.ID)).
		Bool("settled", overtime.Settled).
		Msg("overtime updated")

	return Resolved(overtime, "The overtime has been updated"), nil
}
