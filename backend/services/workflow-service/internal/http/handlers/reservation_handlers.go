package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/http/middleware"
	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

// ReservationHandlers serves /reservations endpoints.
type ReservationHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewReservationHandlers returns handler set.
func NewReservationHandlers(workflow *service.WorkflowService, logger *zap.Logger) *ReservationHandlers {
	return &ReservationHandlers{workflow: workflow, logger: logger}
}

// Create handles POST /reservations.
func (h *ReservationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.ReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.workflow.CreateReservation(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Mine handles GET /reservations/me.
func (h *ReservationHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.UserReservations(actor.ID))
}

// List handles GET /reservations.
func (h *ReservationHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.Reservations())
}

// Pending handles GET /reservations/pending.
func (h *ReservationHandlers) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.PendingReservations())
}

// Approve handles POST /reservations/{id}/approve.
func (h *ReservationHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())
	res, err := h.workflow.ApproveReservation(r.Context(), actor, pathID(r), body.Notes)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reject handles POST /reservations/{id}/reject.
func (h *ReservationHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	actor, _ := middleware.ActorFromContext(r.Context())
	res, err := h.workflow.RejectReservation(r.Context(), actor, pathID(r), body.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Cancel handles POST /reservations/{id}/cancel.
func (h *ReservationHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	res, err := h.workflow.CancelReservation(r.Context(), actor, pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Complete handles POST /reservations/{id}/complete.
func (h *ReservationHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	res, err := h.workflow.CompleteReservation(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
