package agent

import (
	"context"

	"github.com/ashureev/fitcoach/internal/domain"
)

// Planner turns a completed assessment into a structured plan.
type Planner interface {
	// GeneratePlan asks the model for a 7-day plan. One call, no retries.
	GeneratePlan(ctx context.Context, a domain.Assessment) (*domain.FitnessPlan, error)
}

// ChatStarter opens a plan-scoped assistant conversation.
type ChatStarter interface {
	// StartChat returns a new conversation whose system context embeds plan.
	// Every call yields an independent conversation.
	StartChat(ctx context.Context, plan *domain.FitnessPlan) (Conversation, error)
}

// Conversation is one open assistant chat. The model side keeps the history.
type Conversation interface {
	// Send delivers one user message and returns the model reply text.
	Send(ctx context.Context, text string) (string, error)
}

// Coach is the full model capability used by the app.
type Coach interface {
	Planner
	ChatStarter
}

// Ensure the concrete coaches implement Coach.
var (
	_ Coach = (*GeminiClient)(nil)
	_ Coach = Unavailable{}
)
