package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/agent/agenttest"
	"github.com/ashureev/fitcoach/internal/domain"
)

func sampleAssessment() domain.Assessment {
	return domain.Assessment{
		Goal:              domain.GoalLoseWeight,
		Gender:            domain.GenderFemale,
		Age:               25,
		Height:            170,
		Weight:            65.5,
		ActivityLevel:     domain.ActivityLightlyActive,
		DietaryPreference: "vegetarian",
		SleepHours:        7,
		WaterIntake:       2,
	}
}

func TestBuildPlanPromptEmbedsEveryField(t *testing.T) {
	prompt := agent.BuildPlanPrompt(sampleAssessment())

	for _, want := range []string{
		"4-week starter fitness and nutrition plan",
		"- Goal: lose weight",
		"- Gender: female",
		"- Age: 25 years",
		"- Height: 170 cm",
		"- Weight: 65.5 kg",
		"- Activity Level: lightly active",
		"- Dietary Preference: vegetarian",
		"- Current Sleep: 7 hours per night",
		"- Current Water Intake: 2 liters per day",
		"full 7 days",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "_")
}

func TestBuildSystemInstruction(t *testing.T) {
	instruction, err := agent.BuildSystemInstruction("", agenttest.SamplePlan())
	require.NoError(t, err)

	assert.Contains(t, instruction, "You are FitBot")
	assert.Contains(t, instruction, "politely decline")
	assert.Contains(t, instruction, "THE USER'S PERSONALIZED PLAN:")
	assert.Contains(t, instruction, `  "title": "Your 4-Week Kickstart"`)
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Hi Alex! I'm FitBot. Ask me anything about your new plan.", agent.Greeting("", "Alex"))
	assert.Equal(t, "Hi Sam! I'm Coachy. Ask me anything about your new plan.", agent.Greeting("Coachy", "Sam"))
}

func TestPlanSchemaRequiredKeys(t *testing.T) {
	s := agent.PlanSchema()
	assert.ElementsMatch(t, []string{"title", "summary", "workoutPlan", "nutritionPlan", "lifestyleRecommendations"}, s.Required)

	workout := s.Properties["workoutPlan"].Items
	assert.ElementsMatch(t, []string{"day", "focus", "exercises"}, workout.Required)
	assert.ElementsMatch(t, []string{"name", "sets", "reps", "rest"}, workout.Properties["exercises"].Items.Required)

	nutrition := s.Properties["nutritionPlan"].Items
	assert.ElementsMatch(t, []string{"day", "totalCalories", "macronutrients", "meals"}, nutrition.Required)
	assert.ElementsMatch(t, []string{"protein", "carbs", "fats"}, nutrition.Properties["macronutrients"].Required)
	assert.ElementsMatch(t, []string{"name", "description", "calories"}, nutrition.Properties["meals"].Items.Required)

	assert.ElementsMatch(t, []string{"sleep", "hydration", "stressManagement"}, s.Properties["lifestyleRecommendations"].Required)
}
