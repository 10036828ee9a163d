package feed

import (
	"sync"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

const defaultHistory = 50

// Listener receives every inserted charging request.
type Listener func(models.ChargingRequest)

// Hub fans charging requests out to subscribers and keeps a short history.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
	history   []models.ChargingRequest
	limit     int
	logger    *zap.Logger
}

// NewHub builds a hub remembering up to limit requests.
func NewHub(limit int, logger *zap.Logger) *Hub {
	if limit <= 0 {
		limit = defaultHistory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		listeners: make(map[uint64]Listener),
		limit:     limit,
		logger:    logger,
	}
}

// Subscribe registers fn. The returned func detaches it and is safe to call twice.
func (h *Hub) Subscribe(fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of attached listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish records req and delivers it to every listener.
func (h *Hub) Publish(req models.ChargingRequest) {
	h.mu.Lock()
	h.history = append(h.history, req)
	if over := len(h.history) - h.limit; over > 0 {
		h.history = append([]models.ChargingRequest(nil), h.history[over:]...)
	}
	listeners := make([]Listener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(req)
	}
	h.logger.Debug("charging request published", zap.String("request_id", req.ID), zap.Int("listeners", len(listeners)))
}

// Recent returns up to n of the newest requests, newest first.
func (h *Hub) Recent(n int) []models.ChargingRequest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.history) {
		n = len(h.history)
	}
	out := make([]models.ChargingRequest, 0, n)
	for i := len(h.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.history[i])
	}
	return out
}
