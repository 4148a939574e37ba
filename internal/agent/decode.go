package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ashureev/fitcoach/internal/domain"
)

// codeFencePattern matches a response wrapped in a Markdown code block.
var codeFencePattern = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*\\n?(.*?)\\s*```$")

var errEmptyResponse = errors.New("empty model response")

// DecodePlan parses model output into a plan. The text must be a JSON object
// satisfying PlanSchema; partial plans are rejected.
func DecodePlan(text string) (*domain.FitnessPlan, error) {
	raw := stripCodeFence(text)
	if raw == "" {
		return nil, errEmptyResponse
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("parse plan json: %w", err)
	}
	if err := validateValue(generic, PlanSchema(), ""); err != nil {
		return nil, err
	}

	var plan domain.FitnessPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFencePattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return text
}
