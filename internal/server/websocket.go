package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

const wsReadTimeout = 120 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "run", "ping"
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"` // RunRequest for "run"
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"` // "result", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketHandler runs programs submitted over a WebSocket connection.
// Runs of one connection execute in order; responses echo the message ID.
type WebSocketHandler struct {
	runner   *Runner
	upgrader websocket.Upgrader
	logger   *mdwlog.Logger
}

// NewWebSocketHandler creates a handler accepting the given origins. An
// empty list accepts every origin.
func NewWebSocketHandler(runner *Runner, allowedOrigins []string, logger *mdwlog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &WebSocketHandler{
		runner: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.WithField("component", "websocket"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("websocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// wsConn serializes writes; gorilla connections allow one writer
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.WriteJSON(resp)
}

func (h *WebSocketHandler) handleConnection(ctx context.Context, raw *websocket.Conn) {
	conn := &wsConn{Conn: raw}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	logger := h.logger.WithField("remote", conn.RemoteAddr().String())
	logger.Info("websocket connection established")

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("websocket read failed", err)
			} else {
				logger.Info("websocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.sendResponse(conn, WSResponse{Type: "pong", ID: msg.ID})

		case "run":
			var req RunRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sendError(conn, msg.ID, "invalid_payload", "invalid run payload")
				continue
			}
			resp, err := h.runner.Run(ctx, &req)
			if err != nil {
				h.sendError(conn, msg.ID, strings.ToLower(mdwerror.GetCode(err).String()), err.Error())
				continue
			}
			h.sendResponse(conn, WSResponse{Type: "result", ID: msg.ID, Payload: resp})

		default:
			h.sendError(conn, msg.ID, "unknown_type", "unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) sendResponse(conn *wsConn, resp WSResponse) {
	if err := conn.send(resp); err != nil {
		h.logger.WarnWithErr("websocket write failed", err)
	}
}

func (h *WebSocketHandler) sendError(conn *wsConn, id, code, message string) {
	h.sendResponse(conn, WSResponse{
		Type:    "error",
		ID:      id,
		Payload: WSErrorPayload{Code: code, Message: message},
	})
}
