package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

// PayoutHandlers serves /payouts endpoints.
type PayoutHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewPayoutHandlers returns handler set.
func NewPayoutHandlers(workflow *service.WorkflowService, logger *zap.Logger) *PayoutHandlers {
	return &PayoutHandlers{workflow: workflow, logger: logger}
}

// Request handles POST /payouts/requests.
func (h *PayoutHandlers) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := h.workflow.RequestPayoutFromAdmin(r.Context(), actor.ID, body.Amount)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// Mine handles GET /payouts/requests/me.
func (h *PayoutHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.UserPayoutRequests(actor.ID))
}

// List handles GET /payouts/requests.
func (h *PayoutHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.PayoutRequests())
}

// Rejected handles GET /payouts/requests/rejected.
func (h *PayoutHandlers) Rejected(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.RejectedPayoutRequests())
}

// Approve handles POST /payouts/requests/{id}/approve.
func (h *PayoutHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := h.workflow.ApprovePayoutRequest(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Reject handles POST /payouts/requests/{id}/reject.
func (h *PayoutHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := h.workflow.RejectPayoutRequest(r.Context(), pathID(r), body.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Distribute handles POST /payouts/distribute.
func (h *PayoutHandlers) Distribute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RevenuePool   float64               `json:"revenue_pool"`
		Contributions []models.Contribution `json:"contributions"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	records, err := h.workflow.DistributePayouts(r.Context(), body.Contributions, body.RevenuePool)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, records)
}

// Records handles GET /payouts/records.
func (h *PayoutHandlers) Records(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.PayoutRecords())
}

// CompleteRecord handles POST /payouts/records/{id}/complete.
func (h *PayoutHandlers) CompleteRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.workflow.CompletePayoutRecord(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// FailRecord handles POST /payouts/records/{id}/fail.
func (h *PayoutHandlers) FailRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.workflow.FailPayoutRecord(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
