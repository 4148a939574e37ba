// Package api provides HTTP handlers for the FitCoach API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/fitcoach/internal/auth"
	"github.com/ashureev/fitcoach/internal/chatws"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/identity"
	"github.com/ashureev/fitcoach/internal/session"
)

const defaultMaxRequestBodySize = 64 * 1024

// AssistantInfo describes the configured model for the frontend.
// *agent.Service implements it.
type AssistantInfo interface {
	Enabled() bool
	Model() string
	AssistantName() string
}

// Handler provides common handler utilities.
type Handler struct {
	sessions    *session.Manager
	auth        *auth.Service
	sockets     *chatws.SessionManager
	assistant   AssistantInfo
	maxBodySize int64
	logger      *slog.Logger
}

// NewHandler creates a new Handler with common dependencies. sockets may be
// nil when the chat WebSocket is not served.
func NewHandler(sessions *session.Manager, authSvc *auth.Service, sockets *chatws.SessionManager, assistant AssistantInfo, maxBodySize int64, logger *slog.Logger) *Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:    sessions,
		auth:        authSvc,
		sockets:     sockets,
		assistant:   assistant,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body of at most maxBodySize bytes into v and answers
// the request itself when that fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// session returns the caller's session, creating a logged-out one if needed.
func (h *Handler) session(r *http.Request) *session.Session {
	return h.sessions.Get(identity.KeyFromContext(r.Context()))
}

// loggedIn returns the caller's session and user, or answers 401.
func (h *Handler) loggedIn(w http.ResponseWriter, r *http.Request) (*session.Session, domain.User, bool) {
	sess := h.session(r)
	user, ok := sess.User()
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, domain.User{}, false
	}
	return sess, user, true
}

// DeviceKey keys per-device limits. Session IDs are left out so clients
// cannot bypass throttling by rotating them.
func DeviceKey(r *http.Request) string {
	return identity.DeviceIDFromContext(r.Context())
}
