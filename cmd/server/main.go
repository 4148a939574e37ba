// FitCoach - assessment, plan generation and plan chat server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/api"
	"github.com/ashureev/fitcoach/internal/auth"
	"github.com/ashureev/fitcoach/internal/chatws"
	"github.com/ashureev/fitcoach/internal/config"
	"github.com/ashureev/fitcoach/internal/identity"
	"github.com/ashureev/fitcoach/internal/metrics"
	"github.com/ashureev/fitcoach/internal/middleware"
	"github.com/ashureev/fitcoach/internal/session"
	"github.com/ashureev/fitcoach/internal/store"
	"github.com/ashureev/fitcoach/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "ai_enabled", cfg.AIEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	conversationLogger, err := agent.NewConversationLogger(cfg.ConversationLogging(), logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	assistant, err := agent.NewService(ctx, cfg.Agent(), conversationLogger, logger)
	if err != nil {
		slog.Error("Failed to initialize agent service", "error", err)
		os.Exit(1)
	}
	defer assistant.Close()

	// Initialize services.
	sessions := session.NewManager(assistant, logger)
	sockets := chatws.NewSessionManager()
	authSvc := auth.NewService(repo, logger)
	chatLimiter := middleware.NewRateLimiter(ctx, cfg.Chat.RateLimit, cfg.Chat.RateWindow)

	// Initialize handlers.
	handler := api.NewHandler(sessions, authSvc, sockets, assistant, cfg.MaxRequestBodySize, logger)
	healthHandler := api.NewHealthHandler(repo, sessions, sockets)
	wsHandler := chatws.NewWebSocketHandler(sessions, sockets, chatLimiter, cfg.FrontendURL, cfg.IsDevelopment(), logger)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(middleware.Origins(cfg.FrontendURL)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	handler.RegisterRoutes(r, chatLimiter.Limit(api.DeviceKey))

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	// Plan generation can take most of the model timeout, so writes get
	// headroom on top of it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start TTL worker. Evicted sessions lose their chat socket too.
	sessions.StartSweeper(ctx, cfg.SweepInterval, cfg.SessionTTL, sockets.CloseKey)
	slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL, "interval", cfg.SweepInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
