package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/fitcoach/internal/domain"
)

// BuildPlanPrompt renders the plan request for one assessment.
func BuildPlanPrompt(a domain.Assessment) string {
	var b strings.Builder
	b.WriteString("As an expert fitness and nutrition coach, create a personalized 4-week starter fitness and nutrition plan for a user with the following details. ")
	b.WriteString("The plan should be encouraging, realistic for a beginner, and highly detailed.\n\n")
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", a.Goal.Label())
	fmt.Fprintf(&b, "- Gender: %s\n", a.Gender.Label())
	fmt.Fprintf(&b, "- Age: %d years\n", a.Age)
	fmt.Fprintf(&b, "- Height: %s cm\n", number(a.Height))
	fmt.Fprintf(&b, "- Weight: %s kg\n", number(a.Weight))
	fmt.Fprintf(&b, "- Activity Level: %s\n", a.ActivityLevel.Label())
	fmt.Fprintf(&b, "- Dietary Preference: %s\n", a.DietaryPreference)
	fmt.Fprintf(&b, "- Current Sleep: %s hours per night\n", number(a.SleepHours))
	fmt.Fprintf(&b, "- Current Water Intake: %s liters per day\n\n", number(a.WaterIntake))
	b.WriteString("Generate a comprehensive plan in JSON format. ")
	b.WriteString("The plan must cover a full 7 days for workouts and nutrition, which the user can repeat over 4 weeks. ")
	b.WriteString("Be specific and provide clear instructions. The tone should be motivational and supportive.\n")
	return b.String()
}

// BuildSystemInstruction renders the assistant persona with the plan embedded
// as indented JSON.
func BuildSystemInstruction(assistantName string, plan *domain.FitnessPlan) (string, error) {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly and knowledgeable AI fitness assistant. ", assistantName)
	b.WriteString("Your purpose is to help the user understand and follow their personalized fitness plan. ")
	b.WriteString("Answer their questions about exercises, nutrition, and lifestyle recommendations based on the plan provided below. ")
	b.WriteString("Be supportive and encouraging. ")
	b.WriteString("If a question is outside the scope of fitness and this plan, politely decline to answer.\n\n")
	b.WriteString("THE USER'S PERSONALIZED PLAN:\n")
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}

// Greeting is the opening assistant message of every new conversation.
func Greeting(assistantName, userName string) string {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return fmt.Sprintf("Hi %s! I'm %s. Ask me anything about your new plan.", userName, assistantName)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
