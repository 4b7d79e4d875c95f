package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/audit"
	"github.com/gatherly/server/internal/authz"
	"github.com/gatherly/server/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
	Guard   *Guard
	Audit   *audit.Logger
	Env     string
}

func NewEventsHandler(service *events.Service, guard *Guard, auditLogger *audit.Logger, env string) *EventsHandler {
	return &EventsHandler{Service: service, Guard: guard, Audit: auditLogger, Env: env}
}

type eventOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type eventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"`
	Owner       eventOwner `json:"owner"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type eventListResponse struct {
	Items      []eventResponse `json:"items"`
	NextCursor string          `json:"next_cursor"`
}

type eventRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// List handles GET /api/v1/events, the public listing.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionList, "")
	if !ok {
		return
	}

	paginationArgs, err := events.ParseListQuery(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		return
	}

	// Public listings are never scoped, whoever asks.
	filter := authz.ScopeFilter(identity, authz.ResourceEvent, authz.IntentListPublic)

	result, err := h.Service.List(r.Context(), events.Filter{OwnerID: filter.OwnerID}, paginationArgs)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, listPayload(result))
}

// ListMine handles GET /api/v1/my/events, the dashboard listing.
func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionListMine, "")
	if !ok {
		return
	}

	paginationArgs, err := events.ParseListQuery(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, h.Env)
		return
	}

	filter := authz.ScopeFilter(identity, authz.ResourceEvent, authz.IntentListMine)

	result, err := h.Service.List(r.Context(), events.Filter{OwnerID: filter.OwnerID}, paginationArgs)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, listPayload(result))
}

// Create handles POST /api/v1/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionCreate, "")
	if !ok {
		return
	}

	input, ok := decodeEventRequest(w, r, h.Env, false)
	if !ok {
		return
	}

	event, err := h.Service.Create(r.Context(), events.CreateParams{
		Title:       input.title,
		Location:    input.location,
		Description: input.description,
		Date:        input.date,
		OwnerID:     identity.UserID,
	})
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	h.Audit.LogSuccess("event.create", identity.UserID, "event", event.ID, nil)
	writeJSON(w, http.StatusCreated, eventPayload(event))
}

// Get handles GET /api/v1/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if _, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionRead, id); !ok {
		return
	}

	event, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, ProblemNotFound, "Event not found", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, eventPayload(event))
}

// Update handles PUT /api/v1/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionUpdate, id)
	if !ok {
		return
	}

	input, ok := decodeEventRequest(w, r, h.Env, true)
	if !ok {
		return
	}

	event, err := h.Service.Update(r.Context(), id, events.UpdateParams{
		Title:       input.title,
		Location:    input.location,
		Description: input.description,
		Date:        input.date,
	})
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, ProblemNotFound, "Event not found", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	h.Audit.LogSuccess("event.update", identity.UserID, "event", id, nil)
	writeJSON(w, http.StatusOK, eventPayload(event))
}

// Delete handles DELETE /api/v1/events/{id}. The event's RSVPs are
// removed with it in one atomic operation.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", nil, h.Env)
		return
	}

	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	identity, ok := h.Guard.Require(w, r, authz.ResourceEvent, authz.ActionDelete, id)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, ProblemNotFound, "Event not found", nil, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, ProblemServerError, "Internal Server Error", err, h.Env)
		return
	}

	h.Audit.LogSuccess("event.delete", identity.UserID, "event", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

type eventInput struct {
	title       string
	location    string
	description string
	date        time.Time
}

// decodeEventRequest parses and validates an event payload. Creation
// tolerates a blank description; updates must send every field so a
// PUT always carries the full replacement state.
func decodeEventRequest(w http.ResponseWriter, r *http.Request, env string, requireDescription bool) (eventInput, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, ProblemValidation, "Invalid request", err, env)
		return eventInput{}, false
	}

	input := eventInput{
		title:       strings.TrimSpace(req.Title),
		location:    strings.TrimSpace(req.Location),
		description: strings.TrimSpace(req.Description),
	}

	if input.title == "" {
		writeFieldError(w, r, env, FieldError{Field: "title", Message: "required"})
		return eventInput{}, false
	}
	if input.location == "" {
		writeFieldError(w, r, env, FieldError{Field: "location", Message: "required"})
		return eventInput{}, false
	}
	if requireDescription && input.description == "" {
		writeFieldError(w, r, env, FieldError{Field: "description", Message: "required"})
		return eventInput{}, false
	}
	if strings.TrimSpace(req.Date) == "" {
		writeFieldError(w, r, env, FieldError{Field: "date", Message: "required"})
		return eventInput{}, false
	}

	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		writeFieldError(w, r, env, FieldError{Field: "date", Message: "must be RFC 3339"})
		return eventInput{}, false
	}
	input.date = date

	return input, true
}

func eventPayload(event *events.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Location:    event.Location,
		Description: event.Description,
		Date:        event.Date.UTC().Format(time.RFC3339),
		Owner: eventOwner{
			ID:    event.OwnerID,
			Name:  event.OwnerName,
			Email: event.OwnerEmail,
		},
		CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: event.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func listPayload(result events.ListResult) eventListResponse {
	items := make([]eventResponse, 0, len(result.Events))
	for i := range result.Events {
		items = append(items, eventPayload(&result.Events[i]))
	}
	return eventListResponse{Items: items, NextCursor: result.NextCursor}
}
