package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ashureev/fitcoach/internal/session"
)

type chatRequest struct {
	Message string `json:"message"`
}

// GetChat returns the transcript and whether a reply is pending.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	JSON(w, http.StatusOK, map[string]interface{}{
		"messages":  snap.Transcript,
		"chatOpen":  snap.ChatOpen,
		"isLoading": snap.Loading,
	})
}

// PostChat sends one message and waits for the reply. A failed model call
// still answers 200 with the apology as the reply.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.loggedIn(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := sess.SendChatMessage(context.WithoutCancel(r.Context()), req.Message)
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, session.ErrNoChat):
		Error(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, session.ErrStale):
		Error(w, http.StatusConflict, "session changed while the reply was pending")
		return
	case err != nil:
		h.logger.Error("Chat message failed", "error", err)
		Error(w, http.StatusInternalServerError, "chat failed")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"reply":    reply,
		"messages": sess.Snapshot().Transcript,
	})
}
