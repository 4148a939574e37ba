// Package agent implements the AI fitness coach: plan generation and the
// plan-scoped assistant chat.
package agent

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/fitcoach/internal/domain"
)

// Fixed user-facing texts.
const (
	PlanFailureMessage   = "Failed to generate your personalized plan. Please try again."
	ChatApologyMessage   = "I'm having trouble connecting right now. Please try again in a moment."
	DefaultAssistantName = "FitBot"
	DefaultModel         = "gemini-2.5-flash"
)

var (
	// ErrPlanGeneration is the only error callers see when a plan cannot be
	// produced; the cause is logged.
	ErrPlanGeneration = errors.New(PlanFailureMessage)

	// ErrNotConfigured is returned by Unavailable when no API key is set.
	ErrNotConfigured = errors.New("model provider not configured")
)

// Config holds model provider configuration.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Timeout       time.Duration
	AssistantName string
	Temperature   *float32
}

// DefaultConfig returns default agent configuration.
func DefaultConfig() Config {
	return Config{
		Model:         DefaultModel,
		Timeout:       60 * time.Second,
		AssistantName: DefaultAssistantName,
	}
}

// Unavailable is the Coach used when the server runs without an API key.
// Every call fails, which surfaces as the normal generation error.
type Unavailable struct{}

// GeneratePlan always fails with ErrNotConfigured.
func (Unavailable) GeneratePlan(context.Context, domain.Assessment) (*domain.FitnessPlan, error) {
	return nil, ErrNotConfigured
}

// StartChat always fails with ErrNotConfigured.
func (Unavailable) StartChat(context.Context, *domain.FitnessPlan) (Conversation, error) {
	return nil, ErrNotConfigured
}
