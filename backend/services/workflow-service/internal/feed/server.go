package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// Server upgrades dashboard connections and streams hub inserts to them.
type Server struct {
	hub          *Hub
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer builds ws server.
func NewServer(hub *Hub, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:          ctx,
		cancel:       cancel,
		hub:          hub,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for /feed/ws. Recent history is replayed first.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "feed is shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	var unsubscribe func()
	conn := newConnection(id, ws, s.writeTimeout, s.logger, func() {
		if unsubscribe != nil {
			unsubscribe()
		}
		s.logger.Info("feed client disconnected", zap.String("conn_id", id))
	})

	recent := s.hub.Recent(0)
	for i := len(recent) - 1; i >= 0; i-- {
		s.deliver(conn, recent[i])
	}
	unsubscribe = s.hub.Subscribe(func(req models.ChargingRequest) {
		s.deliver(conn, req)
	})

	s.logger.Info("feed client connected", zap.String("conn_id", id))
	go conn.start(s.ctx)
}

// Shutdown closes every open dashboard stream and refuses new ones. Hijacked sockets are
// not drained by http.Server.Shutdown.
func (s *Server) Shutdown() {
	s.cancel()
}

func (s *Server) deliver(conn *connection, req models.ChargingRequest) {
	data, err := json.Marshal(req)
	if err != nil {
		s.logger.Warn("failed to encode charging request", zap.String("request_id", req.ID), zap.Error(err))
		return
	}
	conn.enqueue(data)
}
