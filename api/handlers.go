/*
handlers.go - HTTP API handlers for the absence engine

PURPOSE:
  Exposes the absence engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the service layer.

ENDPOINTS:
  Requests:
    GET    /api/requests                List leave requests (filter + page)
    DELETE /api/requests/{id}           Soft-delete a request

  Overtimes:
    POST   /api/overtimes               Create or update an overtime
    GET    /api/overtimes/{id}          Get one overtime

  Rights:
    GET    /api/rightrenewals/{id}      Get one renewal window

  Accounts:
    POST   /api/accounts/{id}/collections
                                        Save a right-collection period
    GET    /api/accounts/{id}/renewals/{renewalID}/balance
                                        Entitlement balance on one renewal

REQUEST FLOW:
  1. Parse HTTP request
  2. Call the service layer
  3. Serialize response (success payloads carry a `$outcome` envelope)
  4. Map domain errors to HTTP status

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, period overlap, invalid input
  - 403: Access denied
  - 404: Document not found, unresolved reference
  - 409: Settled overtime modification
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication. The ?user= scope on request deletion is an
  application-level restriction, not an auth layer.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/meridian/absence-engine/absence"
	"github.com/meridian/absence-engine/service"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Requests    *service.RequestService
	Overtimes   *service.OvertimeService
	Renewals    *service.RenewalService
	Memberships *service.MembershipService
	Balances    *service.BalanceService

	Log zerolog.Logger
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns leave requests matching the query filter.
// GET /api/requests?user=&deleted=&limit=&offset=
//
// "deleted" is a comma-separated set of deletion statuses; absent, listings
// default to active and waiting-deletion requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := absence.RequestFilter{
		User: absence.UserID(r.URL.Query().Get("user")),
	}
	if raw := r.URL.Query().Get("deleted"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Deleted = append(filter.Deleted, absence.DeletionStatus(strings.TrimSpace(part)))
		}
	}

	opts, err := parseListOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	requests, err := h.Requests.List(r.Context(), filter, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, toRequestDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteRequest soft-deletes a request.
// DELETE /api/requests/{id}?user=
//
// With ?user=, deletion is scoped to requests created by that user.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := absence.RequestID(chi.URLParam(r, "id"))
	scope := absence.UserID(r.URL.Query().Get("user"))

	envelope, err := h.Requests.Delete(r.Context(), id, scope)
	if err != nil {
		writeDomainError(w, "Failed to delete request", err)
		return
	}

	writeJSON(w, http.StatusOK, service.Envelope[RequestDTO]{
		Data:    toRequestDTO(*envelope.Data),
		Outcome: envelope.Outcome,
	})
}

// =============================================================================
// OVERTIME HANDLERS
// =============================================================================

// SaveOvertime creates a new overtime (empty id) or updates an existing one.
// POST /api/overtimes
func (h *Handler) SaveOvertime(w http.ResponseWriter, r *http.Request) {
	var params service.SaveOvertimeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	envelope, err := h.Overtimes.Save(r.Context(), params)
	if err != nil {
		writeDomainError(w, "Failed to save overtime", err)
		return
	}

	status := http.StatusOK
	if params.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, service.Envelope[OvertimeDTO]{
		Data:    toOvertimeDTO(envelope.Data),
		Outcome: envelope.Outcome,
	})
}

// GetOvertime returns one overtime.
// GET /api/overtimes/{id}
func (h *Handler) GetOvertime(w http.ResponseWriter, r *http.Request) {
	id := absence.OvertimeID(chi.URLParam(r, "id"))

	ot, err := h.Overtimes.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get overtime", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeDTO(ot))
}

// =============================================================================
// RIGHT RENEWAL HANDLERS
// =============================================================================

// GetRenewal returns one renewal window.
// GET /api/rightrenewals/{id}
func (h *Handler) GetRenewal(w http.ResponseWriter, r *http.Request) {
	id := absence.RenewalID(chi.URLParam(r, "id"))

	renewal, err := h.Renewals.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get renewal", err)
		return
	}
	writeJSON(w, http.StatusOK, toRenewalDTO(renewal))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// SaveCollection saves a right-collection period on an account, validating
// it against the account's existing periods.
// POST /api/accounts/{id}/collections
func (h *Handler) SaveCollection(w http.ResponseWriter, r *http.Request) {
	accountID := absence.AccountID(chi.URLParam(r, "id"))

	var body SaveCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	membership := absence.AccountCollection{
		ID:           absence.MembershipID(body.ID),
		AccountID:    accountID,
		CollectionID: absence.CollectionID(body.Collection),
		Period:       absence.Period{Start: body.Start, End: body.End},
	}

	envelope, err := h.Memberships.Save(r.Context(), membership)
	if err != nil {
		writeDomainError(w, "Failed to save collection period", err)
		return
	}

	status := http.StatusOK
	if body.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, service.Envelope[CollectionDTO]{
		Data:    toCollectionDTO(envelope.Data),
		Outcome: envelope.Outcome,
	})
}

// GetBalance returns the entitlement balance of an account on one renewal.
// GET /api/accounts/{id}/renewals/{renewalID}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := absence.AccountID(chi.URLParam(r, "id"))
	renewalID := absence.RenewalID(chi.URLParam(r, "renewalID"))

	view, err := h.Balances.View(r.Context(), accountID, renewalID)
	if err != nil {
		writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(view))
}

// Health reports readiness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseListOptions(r *http.Request) (absence.ListOptions, error) {
	var opts absence.ListOptions
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.New("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Outcome: service.Outcome{Success: false, Message: message}}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses. The outcome
// message is derived from the error the same way the services phrase it.
func writeDomainError(w http.ResponseWriter, fallback string, err error) {
	status := http.StatusInternalServerError
	switch {
	case absence.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, absence.ErrSettledImmutable):
		status = http.StatusConflict
	case errors.Is(err, absence.ErrForbidden):
		status = http.StatusForbidden
	case absence.IsClientError(err):
		status = http.StatusBadRequest
	}

	resp := ErrorResponse{Outcome: service.FailureOutcome(err)}
	if resp.Outcome.Message == "" || status == http.StatusInternalServerError {
		resp.Outcome.Message = fallback
	}
	if status != http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
