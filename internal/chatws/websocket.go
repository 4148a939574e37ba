package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/identity"
	"github.com/ashureev/fitcoach/internal/session"
)

// Frame types.
const (
	TypeMessage    = "message"
	TypePing       = "ping"
	TypePong       = "pong"
	TypeClose      = "close"
	TypeClosed     = "closed"
	TypeTranscript = "transcript"
	TypeError      = "error"
)

const (
	maxMessageBytes = 16 * 1024
	pendingMessages = 8
	writeTimeout    = 10 * time.Second
)

// Limiter throttles chat messages per device.
type Limiter interface {
	Allow(key string) bool
}

// Sessions resolves the state store of a device tab.
type Sessions interface {
	Lookup(key string) (*session.Session, bool)
}

// inbound is a frame sent by the client.
type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// outbound is a frame sent to the client.
type outbound struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages,omitempty"`
	Loading  bool                 `json:"loading,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// WebSocketHandler serves the chat socket of the caller's tab.
type WebSocketHandler struct {
	sessions      Sessions
	sm            *SessionManager
	limiter       Limiter
	allowedOrigin string
	isDev         bool
	logger        *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. limiter may be nil.
func NewWebSocketHandler(sessions Sessions, sm *SessionManager, limiter Limiter, allowedOrigin string, isDev bool, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		sessions:      sessions,
		sm:            sm,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		logger:        logger,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deviceID := identity.DeviceIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	log := h.logger.With("device_id", deviceID, "session_id", sessionID)
	log.Info("Chat socket request", "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	sess, ok := h.sessions.Lookup(identity.SessionKey(deviceID, sessionID))
	if !ok {
		http.Error(w, `{"error":"not logged in"}`, http.StatusUnauthorized)
		return
	}
	if _, loggedIn := sess.User(); !loggedIn {
		http.Error(w, `{"error":"not logged in"}`, http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error("Failed to accept WebSocket", "error", err)
		return
	}
	ws.SetReadLimit(maxMessageBytes)
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			log.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	h.sm.Register(deviceID, sessionID, ws)
	defer h.sm.Unregister(deviceID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := h.writeTranscript(ctx, ws, sess); err != nil {
		log.Debug("Failed to send initial transcript", "error", err)
		return
	}

	// Messages are answered one at a time, in arrival order, while the read
	// loop keeps serving pings.
	queue := make(chan string, pendingMessages)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.sendLoop(ctx, ws, sess, queue, deviceID, log)
	}()

	h.readLoop(ctx, ws, queue, log)
	close(queue)
	cancel()
	<-done
	log.Info("Chat socket ended")
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, queue chan<- string, log *slog.Logger) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				log.Debug("WebSocket closed", "reason", err)
			} else {
				log.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: "invalid frame"})
			continue
		}

		switch msg.Type {
		case TypeMessage:
			select {
			case queue <- msg.Content:
			default:
				h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: "too many pending messages"})
			}
		case TypePing:
			h.writeFrame(ctx, ws, outbound{Type: TypePong})
		case TypeClose:
			h.writeFrame(ctx, ws, outbound{Type: TypeClosed})
			return
		default:
			h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: "unknown frame type"})
		}
	}
}

func (h *WebSocketHandler) sendLoop(ctx context.Context, ws *websocket.Conn, sess *session.Session, queue <-chan string, deviceID string, log *slog.Logger) {
	for text := range queue {
		if h.limiter != nil && !h.limiter.Allow(deviceID) {
			h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: "rate limit exceeded"})
			continue
		}

		// The reply belongs to the session, so it outlives the socket.
		_, err := sess.SendChatMessage(context.WithoutCancel(ctx), text)
		switch {
		case errors.Is(err, session.ErrNoChat):
			h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: err.Error()})
			continue
		case errors.Is(err, session.ErrEmptyMessage):
			h.writeFrame(ctx, ws, outbound{Type: TypeError, Error: err.Error()})
			continue
		case errors.Is(err, session.ErrStale):
			log.Debug("Dropping stale chat reply")
		case err != nil:
			log.Warn("Chat message failed", "error", err)
		}

		if err := h.writeTranscript(ctx, ws, sess); err != nil {
			log.Debug("Failed to send transcript", "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) writeTranscript(ctx context.Context, ws *websocket.Conn, sess *session.Session) error {
	snap := sess.Snapshot()
	return h.write(ctx, ws, outbound{Type: TypeTranscript, Messages: snap.Transcript, Loading: snap.Loading})
}

func (h *WebSocketHandler) writeFrame(ctx context.Context, ws *websocket.Conn, v outbound) {
	if err := h.write(ctx, ws, v); err != nil {
		h.logger.Debug("Failed to write frame", "type", v.Type, "error", err)
	}
}

func (h *WebSocketHandler) write(ctx context.Context, ws *websocket.Conn, v outbound) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
