package api

import (
	"errors"
	"net/http"

	"github.com/ashureev/fitcoach/internal/auth"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers the account and logs the tab in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	h.finishLogin(w, r, user, err)
}

// Login logs the tab in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	h.finishLogin(w, r, user, err)
}

func (h *Handler) finishLogin(w http.ResponseWriter, r *http.Request, user domain.User, err error) {
	if err != nil {
		var formErr *auth.FormError
		if errors.As(err, &formErr) {
			Error(w, http.StatusBadRequest, formErr.Message)
			return
		}
		h.logger.Error("Login failed", "error", err)
		Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.session(r).Login(user)
	h.logger.Info("User logged in", "user_id", user.UserID, "session_key", identity.KeyFromContext(r.Context()))
	JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Logout resets the tab: its state store is dropped and its chat socket
// closed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sockets != nil {
		h.sockets.CloseSession(identity.DeviceIDFromContext(ctx), identity.SessionIDFromContext(ctx))
	}
	h.sessions.Remove(identity.KeyFromContext(ctx))
	JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetMe returns the current user's information.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	_, user, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
