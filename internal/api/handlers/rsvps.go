package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/authz"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/gatherly/server/internal/domain/rsvps"
)

type RSVPsHandler struct {
	Service *rsvps.Service
	Guard   *Guard
	Env     string
}

func NewRSVPsHandler(service *rsvps.Service, guard *Guard, env string) *RSVPsHandler {
	return &RSVPsHandler{Service: service, Guard: guard, Env: env}
}

type rsvpRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	EventID string `json:"eventId"`
}

type rsvpResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EventID    string `json:"event_id"`
	CreatedAt  string `json:"created_at"`
	EventTitle string `json:"event_title,omitempty"`
	EventDate  string `json:"event_date,omitempty"`
}

type rsvpListResponse struct {
	Items []rsvpResponse `json:"items"`
}

// Create handles POST /api/v1/rsvps, the public signup form. The
// guard checks that the target event exists before anything is
// written; a missing event yields 404, not a dangling RSVP.
func (h *RSVPsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.EventID = strings.TrimSpace(req.EventID)

	if req.Name == "" {
		writeFieldError(w, r, h.Env, FieldError{Field: "name", Message: "required"})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeFieldError(w, r, h.Env, FieldError{Field: "email", Message: "must be a valid email"})
		return
	}
	if err := ids.ValidateULID(req.EventID); err != nil {
		writeFieldError(w, r, h.Env, FieldError{Field: "eventId", Message: "invalid ULID"})
		return
	}

	if _, ok := h.Guard.Require(w, r, authz.ResourceRSVP, authz.ActionCreate, req.EventID); !ok {
		return
	}

	rsvp, err := h.Service.Create(r.Context(), rsvps.CreateParams{
		Name:    req.Name,
		Email:   req.Email,
		EventID: req.EventID,
	})
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, ProblemNotFound, "Event not found", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, rsvpPayload(rsvp))
}

// ListByEvent handles GET /api/v1/events/{id}/rsvps.
func (h *RSVPsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if _, ok := h.Guard.Require(w, r, authz.ResourceRSVP, authz.ActionList, eventID); !ok {
		return
	}

	items, err := h.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, rsvpListPayload(items))
}

// Export handles GET /api/v1/events/{id}/rsvps/export. Only the exact
// owner may export; the policy table grants no ADMIN waiver here.
func (h *RSVPsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	eventID, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if _, ok := h.Guard.Require(w, r, authz.ResourceRSVP, authz.ActionExport, eventID); !ok {
		return
	}

	items, err := h.Service.ExportByEvent(r.Context(), eventID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attendees_%s.csv", eventID))
	w.WriteHeader(http.StatusOK)
	_ = rsvps.WriteCSV(w, items)
}

// MyAttendees handles GET /api/v1/my/attendees, the owner dashboard
// view of signups across their events. ADMIN and STAFF see all events.
func (h *RSVPsHandler) MyAttendees(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceRSVP, authz.ActionListMine, "")
	if !ok {
		return
	}

	filter := authz.ScopeFilter(identity, authz.ResourceRSVP, authz.IntentListMine)

	items, err := h.Service.ListByEventOwner(r.Context(), filter.OwnerID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, rsvpListPayload(items))
}

func rsvpPayload(rsvp *rsvps.RSVP) rsvpResponse {
	payload := rsvpResponse{
		ID:        rsvp.ID,
		Name:      rsvp.Name,
		Email:     rsvp.Email,
		EventID:   rsvp.EventID,
		CreatedAt: rsvp.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rsvp.EventTitle != "" {
		payload.EventTitle = rsvp.EventTitle
		payload.EventDate = rsvp.EventDate.UTC().Format(time.RFC3339)
	}
	return payload
}

func rsvpListPayload(items []rsvps.RSVP) rsvpListResponse {
	payload := rsvpListResponse{Items: make([]rsvpResponse, 0, len(items))}
	for i := range items {
		payload.Items = append(payload.Items, rsvpPayload(&items[i]))
	}
	return payload
}
