/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific date handling (RFC 3339 everywhere)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Service-level inputs (overtime params) carry their own validate tags and
  are checked by the services. DTOs here are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - service/overtimes.go: SaveOvertimeParams, the overtime request body
*/
package api

import (
	"time"

	"github.com/meridian/absence-engine/absence"
	"github.com/meridian/absence-engine/service"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID      string               `json:"id"`
	User    absence.UserSnapshot `json:"user"`
	Status  RequestStatusDTO     `json:"status"`
	Events  []string             `json:"events,omitempty"`
	Created time.Time            `json:"created_at"`
}

// RequestStatusDTO carries the request status flags plus the computed
// display title.
type RequestStatusDTO struct {
	Created string `json:"created,omitempty"`
	Deleted string `json:"deleted,omitempty"`
	Title   string `json:"title"`
}

// OvertimeDTO represents a recorded overtime in API responses.
type OvertimeDTO struct {
	ID       string               `json:"id"`
	User     absence.UserSnapshot `json:"user"`
	Quantity string               `json:"quantity"`
	Unit     string               `json:"quantity_unit"`
	Settled  bool                 `json:"settled"`
	Events   []string             `json:"events"`
	Created  time.Time            `json:"created_at"`
}

// RenewalDTO represents one grant window of a right.
type RenewalDTO struct {
	ID    string    `json:"id"`
	Right string    `json:"right"`
	Start time.Time `json:"start"`
	End   time.Time `json:"finish"`
}

// SaveCollectionRequest is the body for saving a right-collection period on
// an account. A missing "finish" leaves the period open-ended.
type SaveCollectionRequest struct {
	ID         string     `json:"id,omitempty"`
	Collection string     `json:"rightCollection"`
	Start      time.Time  `json:"from"`
	End        *time.Time `json:"to,omitempty"`
}

// CollectionDTO represents a saved right-collection period.
type CollectionDTO struct {
	ID         string     `json:"id"`
	Account    string     `json:"account"`
	Collection string     `json:"rightCollection"`
	Start      time.Time  `json:"from"`
	End        *time.Time `json:"to,omitempty"`
	Created    time.Time  `json:"created_at"`
}

// BalanceDTO represents the entitlement balance of an account on one
// renewal. Available is omitted when no deduction resolver is configured.
type BalanceDTO struct {
	Account   string  `json:"account"`
	Renewal   string  `json:"renewal"`
	Consumed  string  `json:"consumed_quantity"`
	Waiting   string  `json:"waiting_quantity"`
	Confirmed string  `json:"confirmed_quantity"`
	Available *string `json:"available_quantity,omitempty"`
	Unit      string  `json:"unit"`
}

// ErrorResponse is the standard error envelope. Outcome mirrors the
// `$outcome` convention of success payloads so clients can check one field.
type ErrorResponse struct {
	Outcome service.Outcome `json:"$outcome"`
	Details string          `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toRequestDTO(req absence.Request) RequestDTO {
	events := make([]string, 0, len(req.EventIDs))
	for _, id := range req.EventIDs {
		events = append(events, string(id))
	}
	title := req.Status.Title
	if title == "" {
		title = req.DisplayStatus()
	}
	return RequestDTO{
		ID:   string(req.ID),
		User: req.User,
		Status: RequestStatusDTO{
			Created: string(req.Status.Created),
			Deleted: string(req.Status.Deleted),
			Title:   title,
		},
		Events:  events,
		Created: req.Created,
	}
}

func toOvertimeDTO(ot *absence.Overtime) OvertimeDTO {
	events := make([]string, 0, len(ot.EventIDs))
	for _, id := range ot.EventIDs {
		events = append(events, string(id))
	}
	return OvertimeDTO{
		ID:       string(ot.ID),
		User:     ot.User,
		Quantity: ot.Quantity.Value.String(),
		Unit:     string(ot.Quantity.Unit),
		Settled:  ot.Settled,
		Events:   events,
		Created:  ot.Created,
	}
}

func toRenewalDTO(r *absence.RightRenewal) RenewalDTO {
	return RenewalDTO{
		ID:    string(r.ID),
		Right: r.RightID,
		Start: r.Start,
		End:   r.End,
	}
}

func toCollectionDTO(m *absence.AccountCollection) CollectionDTO {
	return CollectionDTO{
		ID:         string(m.ID),
		Account:    string(m.AccountID),
		Collection: string(m.CollectionID),
		Start:      m.Start,
		End:        m.End,
		Created:    m.Created,
	}
}

func toBalanceDTO(v *service.BalanceView) BalanceDTO {
	dto := BalanceDTO{
		Account:   string(v.Account),
		Renewal:   string(v.Renewal),
		Consumed:  v.Consumed.Value.String(),
		Waiting:   v.Waiting.Value.String(),
		Confirmed: v.Confirmed.Value.String(),
		Unit:      string(v.Consumed.Unit),
	}
	if v.Available != nil {
		s := v.Available.Value.String()
		dto.Available = &s
	}
	return dto
}
