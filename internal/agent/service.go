package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/identity"
	"github.com/ashureev/fitcoach/internal/metrics"
)

// Service wraps a Coach with the user-facing error policy, logging and
// metrics. Callers never see provider errors.
type Service struct {
	coach         Coach
	assistantName string
	log           ConversationLogger
	logger        *slog.Logger
}

// NewService picks the Gemini coach when cfg carries an API key and
// Unavailable otherwise.
func NewService(ctx context.Context, cfg Config, conversationLogger ConversationLogger, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var coach Coach = Unavailable{}
	if strings.TrimSpace(cfg.APIKey) != "" {
		g, err := NewGeminiClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		coach = g
	} else {
		logger.Info("AI features disabled (no API key set)")
	}
	return NewServiceWithCoach(coach, cfg.AssistantName, conversationLogger, logger)
}

// NewServiceWithCoach creates a service over coach.
func NewServiceWithCoach(coach Coach, assistantName string, conversationLogger ConversationLogger, logger *slog.Logger) (*Service, error) {
	if coach == nil {
		return nil, errors.New("agent service requires a coach")
	}
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	if conversationLogger == nil {
		conversationLogger = noopConversationLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		coach:         coach,
		assistantName: assistantName,
		log:           conversationLogger,
		logger:        logger,
	}, nil
}

// Enabled reports whether a real model provider is configured.
func (s *Service) Enabled() bool {
	_, off := s.coach.(Unavailable)
	return !off
}

// Model returns the provider model name, or "" when unknown.
func (s *Service) Model() string {
	if m, ok := s.coach.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// AssistantName returns the persona name used in greetings.
func (s *Service) AssistantName() string { return s.assistantName }

// Greeting returns the first transcript message for a new chat.
func (s *Service) Greeting(userName string) string {
	return Greeting(s.assistantName, userName)
}

// GeneratePlan requests a plan. Any failure is logged and reported as
// ErrPlanGeneration.
func (s *Service) GeneratePlan(ctx context.Context, a domain.Assessment) (*domain.FitnessPlan, error) {
	reqID := uuid.NewString()
	start := time.Now()
	userID, sessionID := callerFrom(ctx)

	s.logEvent(ctx, "plan", "outbound", "plan_request", BuildPlanPrompt(a), map[string]any{"request_id": reqID})

	plan, err := s.coach.GeneratePlan(ctx, a)
	metrics.PlanGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PlanGenerations.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error("plan generation failed",
			"request_id", reqID,
			"user_id", userID,
			"session_id", sessionID,
			"error", err,
		)
		s.logEvent(ctx, "plan", "inbound", "plan_error", err.Error(), map[string]any{"request_id": reqID})
		return nil, ErrPlanGeneration
	}

	metrics.PlanGenerations.WithLabelValues(metrics.ResultSuccess).Inc()
	s.logger.Info("plan generated",
		"request_id", reqID,
		"user_id", userID,
		"session_id", sessionID,
		"title", plan.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.logEvent(ctx, "plan", "inbound", "plan_response", plan.Title, map[string]any{
		"request_id":     reqID,
		"workout_days":   len(plan.WorkoutPlan),
		"nutrition_days": len(plan.NutritionPlan),
	})
	return plan, nil
}

// StartChat opens a conversation for plan. The returned Conversation never
// fails: provider errors become the fixed apology text.
func (s *Service) StartChat(ctx context.Context, plan *domain.FitnessPlan) (Conversation, error) {
	conv, err := s.coach.StartChat(ctx, plan)
	if err != nil {
		userID, sessionID := callerFrom(ctx)
		s.logger.Error("chat start failed", "user_id", userID, "session_id", sessionID, "error", err)
		return nil, ErrPlanGeneration
	}
	return &guardedConversation{inner: conv, svc: s}, nil
}

func (s *Service) logEvent(ctx context.Context, channel, direction, eventType, content string, meta map[string]any) {
	userID, sessionID := callerFrom(ctx)
	s.log.Log(ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     userID,
		SessionID:  sessionID,
		Channel:    channel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Content:    cleanForReadability(content),
		Meta:       meta,
	})
}

// Close releases the conversation logger.
func (s *Service) Close() {
	if s.log != nil {
		if err := s.log.Close(); err != nil {
			s.logger.Warn("failed to close conversation logger", "error", err)
		}
	}
}

type guardedConversation struct {
	inner Conversation
	svc   *Service
}

func (c *guardedConversation) Send(ctx context.Context, text string) (string, error) {
	reqID := uuid.NewString()
	start := time.Now()
	c.svc.logEvent(ctx, "chat", "outbound", "chat_user_message", text, map[string]any{"request_id": reqID})

	reply, err := c.inner.Send(ctx, text)
	metrics.ChatReplyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatMessages.WithLabelValues(metrics.ResultError).Inc()
		userID, sessionID := callerFrom(ctx)
		c.svc.logger.Error("chat message failed",
			"request_id", reqID,
			"user_id", userID,
			"session_id", sessionID,
			"error", err,
		)
		reply = ChatApologyMessage
	} else {
		metrics.ChatMessages.WithLabelValues(metrics.ResultSuccess).Inc()
	}

	c.svc.logEvent(ctx, "chat", "inbound", "chat_assistant_message", reply, map[string]any{
		"request_id": reqID,
		"failed":     err != nil,
	})
	return reply, nil
}

func callerFrom(ctx context.Context) (string, string) {
	return identity.DeviceIDFromContext(ctx), identity.SessionIDFromContext(ctx)
}
