package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

// SessionHandlers serves /sessions endpoints.
type SessionHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewSessionHandlers returns handler set.
func NewSessionHandlers(workflow *service.WorkflowService, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{workflow: workflow, logger: logger}
}

// Start handles POST /sessions.
func (h *SessionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sess, err := h.workflow.StartChargingSession(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Stop handles POST /sessions/{id}/stop.
func (h *SessionHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	sess, err := h.workflow.StopChargingSession(r.Context(), actor, pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Cancel handles POST /sessions/{id}/cancel.
func (h *SessionHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	sess, err := h.workflow.CancelChargingSession(r.Context(), actor, pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Mine handles GET /sessions/me.
func (h *SessionHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.SessionsByUser(actor.ID))
}

// Active handles GET /sessions/active.
func (h *SessionHandlers) Active(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.ActiveSessions())
}
