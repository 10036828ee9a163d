package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/service"
)

// NotificationHandlers serves /notifications endpoints.
type NotificationHandlers struct {
	workflow *service.WorkflowService
	logger   *zap.Logger
}

// NewNotificationHandlers returns handler set.
func NewNotificationHandlers(workflow *service.WorkflowService, logger *zap.Logger) *NotificationHandlers {
	return &NotificationHandlers{workflow: workflow, logger: logger}
}

// List handles GET /notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.workflow.UserNotifications(actor.ID))
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.workflow.UnreadNotificationsCount(actor.ID)})
}

// MarkRead handles POST /notifications/{id}/read. Other users' notifications read as missing.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id := pathID(r)
	n, err := h.workflow.Notification(id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if n.UserID != actor.ID {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	n, err = h.workflow.MarkNotificationAsRead(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
