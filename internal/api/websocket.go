package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/reelsync/internal/engine"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum size of a client message
	maxMessageSize = 4096

	// Time allowed for one submitted command
	commandTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Frontends are served from other origins during development.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades requests to websocket connections over one Driver.
type Handler struct {
	driver *engine.Driver
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a handler. The hub must be registered as the engine
// observer for state pushes to reach connections.
func NewHandler(d *engine.Driver, hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{driver: d, hub: hub, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	log := h.logger.With("remote", r.RemoteAddr)
	log.Info("ws connected")

	v, err := h.driver.Submit(r.Context(), engine.Command{Kind: engine.CmdView})
	if err != nil {
		log.Warn("ws initial state failed", "error", err)
		return
	}
	if err := writeJSON(conn, stateMessage("", v)); err != nil {
		log.Warn("ws write initial state failed", "error", err)
		return
	}

	// Only this goroutine writes to conn; the reader hands replies over.
	replies := make(chan ServerMessage, 16)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer close(done)
		h.readLoop(ctx, conn, replies, log)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Info("ws disconnected")
			return

		case msg := <-replies:
			if err := writeJSON(conn, msg); err != nil {
				log.Warn("ws write reply failed", "error", err)
				return
			}

		case v, ok := <-sub:
			if !ok {
				return
			}
			if err := writeJSON(conn, stateMessage("", v)); err != nil {
				log.Warn("ws write state failed", "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop decodes client messages, runs them on the driver and queues the
// replies. It returns when the connection fails or closes.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, replies chan<- ServerMessage, log *slog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws read failed", "error", err)
			}
			return
		}

		reply := h.handle(ctx, data, log)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handle(ctx context.Context, data []byte, log *slog.Logger) ServerMessage {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return badRequest("", err)
	}
	cmd, err := msg.Command()
	if err != nil {
		return badRequest(msg.Op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	log.Debug("ws command", "op", msg.Op)
	v, err := h.driver.Submit(ctx, cmd)
	if err != nil {
		return errorMessage(msg.Op, err)
	}
	return stateMessage(msg.Op, v)
}

func writeJSON(conn *websocket.Conn, msg ServerMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
