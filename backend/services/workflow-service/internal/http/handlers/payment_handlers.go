package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

// PaymentHandlers serves /payments and /admin endpoints.
type PaymentHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewPaymentHandlers returns handler set.
func NewPaymentHandlers(workflow *service.WorkflowService, logger *zap.Logger) *PaymentHandlers {
	return &PaymentHandlers{workflow: workflow, logger: logger}
}

// Create handles POST /payments.
func (h *PaymentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req models.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.workflow.CreatePayment(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Complete handles POST /payments/{id}/complete. Payers may only settle their own payments.
func (h *PaymentHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id := pathID(r)
	if !actor.IsAdmin() && !h.owns(actor.ID, id) {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	p, err := h.workflow.CompletePayment(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Fail handles POST /payments/{id}/fail.
func (h *PaymentHandlers) Fail(w http.ResponseWriter, r *http.Request) {
	p, err := h.workflow.FailPayment(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Mine handles GET /payments/me.
func (h *PaymentHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.UserPayments(actor.ID))
}

// Energy handles GET /payments/me/energy.
func (h *PaymentHandlers) Energy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total_energy_kwh": h.workflow.TotalEnergyFromPayments(actor.ID)})
}

// Transactions handles GET /admin/transactions.
func (h *PaymentHandlers) Transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.AdminTransactions())
}

// Revenue handles GET /admin/revenue.
func (h *PaymentHandlers) Revenue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.RevenueSummary())
}

func (h *PaymentHandlers) owns(userID, paymentID string) bool {
	for _, p := range h.workflow.UserPayments(userID) {
		if p.ID == paymentID {
			return true
		}
	}
	return false
}
