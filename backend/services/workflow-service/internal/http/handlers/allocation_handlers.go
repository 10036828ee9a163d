package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

// AllocationHandlers serves /allocations endpoints.
type AllocationHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewAllocationHandlers returns handler set.
func NewAllocationHandlers(workflow *service.WorkflowService, logger *zap.Logger) *AllocationHandlers {
	return &AllocationHandlers{workflow: workflow, logger: logger}
}

// Create handles POST /allocations.
func (h *AllocationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.AllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	out, err := h.workflow.CreateStationAllocationRequest(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// Mine handles GET /allocations/me.
func (h *AllocationHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.UserAllocatedStations(actor.ID))
}

// List handles GET /allocations.
func (h *AllocationHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.StationAllocationRequests())
}

// Approve handles POST /allocations/{id}/approve.
func (h *AllocationHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	out, err := h.workflow.ApproveStationAllocation(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Reject handles POST /allocations/{id}/reject.
func (h *AllocationHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	out, err := h.workflow.RejectStationAllocation(r.Context(), pathID(r), body.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
