package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ashureev/fitcoach/internal/domain"
)

var errNoAPIKey = errors.New("gemini api key is empty")

// GeminiClient talks to the Gemini API through the official Go SDK.
type GeminiClient struct {
	client        *genai.Client
	model         string
	timeout       time.Duration
	assistantName string
	temperature   *float32
	logger        *slog.Logger
}

// NewGeminiClient creates a client for the configured model.
// No network I/O happens until the first request.
func NewGeminiClient(ctx context.Context, cfg Config, logger *slog.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.AssistantName == "" {
		cfg.AssistantName = DefaultAssistantName
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger.Info("Gemini client ready", "model", cfg.Model)

	return &GeminiClient{
		client:        client,
		model:         cfg.Model,
		timeout:       cfg.Timeout,
		assistantName: cfg.AssistantName,
		temperature:   cfg.Temperature,
		logger:        logger,
	}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

// GeneratePlan sends the plan prompt with the JSON response schema and
// decodes the reply.
func (g *GeminiClient) GeneratePlan(ctx context.Context, a domain.Assessment) (*domain.FitnessPlan, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPlanPrompt(a)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   PlanSchema(),
		Temperature:      g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	plan, err := DecodePlan(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return plan, nil
}

// StartChat opens a new chat whose system instruction carries the plan.
func (g *GeminiClient) StartChat(ctx context.Context, plan *domain.FitnessPlan) (Conversation, error) {
	if plan == nil {
		return nil, errors.New("start chat: nil plan")
	}
	instruction, err := BuildSystemInstruction(g.assistantName, plan)
	if err != nil {
		return nil, err
	}

	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		Temperature:       g.temperature,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &geminiConversation{chat: chat, parent: g}, nil
}

type geminiConversation struct {
	chat   *genai.Chat
	parent *GeminiClient
}

// Send forwards one user message. The SDK chat keeps the history.
func (c *geminiConversation) Send(ctx context.Context, text string) (string, error) {
	ctx, cancel := c.parent.withTimeout(ctx)
	defer cancel()

	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", errEmptyResponse
	}
	return reply, nil
}
