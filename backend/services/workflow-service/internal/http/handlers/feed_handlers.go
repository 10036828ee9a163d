package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/feed"
	"solarshare/backend/services/workflow-service/internal/models"
)

const defaultRecent = 20

// FeedHandlers serves the charging-request feed over plain HTTP.
type FeedHandlers struct {
	hub    *feed.Hub
	sink   feed.Sink
	logger *zap.Logger
}

// NewFeedHandlers returns handler set.
func NewFeedHandlers(hub *feed.Hub, sink feed.Sink, logger *zap.Logger) *FeedHandlers {
	return &FeedHandlers{hub: hub, sink: sink, logger: logger}
}

// Recent handles GET /feed/charging-requests?limit=N.
func (h *FeedHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.hub.Recent(limit))
}

// Insert handles POST /feed/charging-requests.
func (h *FeedHandlers) Insert(w http.ResponseWriter, r *http.Request) {
	var req models.ChargingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.User) == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	out, err := h.sink.Insert(r.Context(), req)
	if err != nil {
		h.logger.Warn("failed to insert charging request", zap.Error(err))
		writeError(w, http.StatusBadGateway, "feed unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}
