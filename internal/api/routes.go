package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/fitcoach/internal/store"
)

// RegisterRoutes registers the JSON API and the dashboard page. chatLimit
// wraps POST /api/chat and may be nil.
func (h *Handler) RegisterRoutes(r chi.Router, chatLimit func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})
		r.Get("/me", h.GetMe)
		r.Get("/config", h.GetConfig)
		r.Get("/state", h.GetState)

		r.Route("/assessment", func(r chi.Router) {
			r.Get("/", h.GetAssessment)
			r.Patch("/", h.PatchAssessment)
			r.Post("/next", h.NextStep)
			r.Post("/prev", h.PrevStep)
			r.Put("/step/{step}", h.JumpToStep)
			r.Post("/submit", h.SubmitAssessment)
			r.Post("/back", h.GoBack)
		})

		r.Route("/plan", func(r chi.Router) {
			r.Get("/", h.GetPlan)
			r.Get("/workout", h.GetWorkout)
			r.Get("/nutrition", h.GetNutrition)
			r.Get("/lifestyle", h.GetLifestyle)
		})

		r.Get("/chat", h.GetChat)
		r.With(orPass(chatLimit)).Post("/chat", h.PostChat)
	})

	r.Get("/dashboard", h.Dashboard)
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// GetConfig returns the server configuration for the frontend.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"ai_enabled":     h.assistant.Enabled(),
		"model":          h.assistant.Model(),
		"assistant_name": h.assistant.AssistantName(),
	})
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo     store.Repository
	sessions interface{ Len() int }
	sockets  interface{ Count() int }
	timeout  time.Duration
}

// NewHealthHandler creates a new health handler. Any argument may be nil.
func NewHealthHandler(repo store.Repository, sessions interface{ Len() int }, sockets interface{ Count() int }) *HealthHandler {
	return &HealthHandler{repo: repo, sessions: sessions, sockets: sockets, timeout: 5 * time.Second}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	if h.sessions != nil {
		status["sessions"] = h.sessions.Len()
	}
	if h.sockets != nil {
		status["sockets"] = h.sockets.Count()
	}
	statusCode := http.StatusOK

	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			slog.Error("Health check failed", "error", err)
			status["status"] = "degraded"
			checks["database"] = "unreachable"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
			if n, err := h.repo.CountAccounts(ctx); err != nil {
				slog.Warn("Failed to count accounts", "error", err)
			} else {
				status["accounts"] = n
			}
		}
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
