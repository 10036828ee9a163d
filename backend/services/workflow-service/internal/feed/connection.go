package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit    = 4096
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// connection streams hub messages to one dashboard socket.
type connection struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func()
}

func newConnection(id string, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func()) *connection {
	return &connection{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, 16),
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// start runs the write pump in the background and blocks on reads until the peer leaves
// or ctx ends.
func (c *connection) start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	go c.writePump(ctx)
	c.readPump()
	cancel()
}

// readPump only drains control frames; dashboards never send data.
func (c *connection) readPump() {
	defer c.cleanup()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("feed connection read closed", zap.String("conn_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = c.ws.Close()
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue drops the message when the peer is too slow.
func (c *connection) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping feed message, buffer full", zap.String("conn_id", c.id))
	}
}

func (c *connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *connection) cleanup() {
	_ = c.ws.Close()
	if c.onClose != nil {
		c.onClose()
	}
}
