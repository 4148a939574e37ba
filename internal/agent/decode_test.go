package agent_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/agent/agenttest"
)

// mutatePlan decodes the sample plan into a generic map, applies fn and
// re-encodes it.
func mutatePlan(t *testing.T, fn func(m map[string]any)) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(agenttest.SamplePlanJSON()), &m))
	fn(m)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func TestDecodePlanAcceptsSample(t *testing.T) {
	plan, err := agent.DecodePlan(agenttest.SamplePlanJSON())
	require.NoError(t, err)

	assert.Equal(t, agenttest.SamplePlan(), plan)
	assert.Len(t, plan.WorkoutPlan, 7)
	assert.Len(t, plan.NutritionPlan, 7)
}

func TestDecodePlanStripsCodeFence(t *testing.T) {
	fenced := "  ```json\n" + agenttest.SamplePlanJSON() + "\n```\n"
	plan, err := agent.DecodePlan(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Your 4-Week Kickstart", plan.Title)

	bare := "```\n" + agenttest.SamplePlanJSON() + "```"
	_, err = agent.DecodePlan(bare)
	require.NoError(t, err)
}

func TestDecodePlanRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		path   string
	}{
		{
			name:   "top level summary",
			mutate: func(m map[string]any) { delete(m, "summary") },
			path:   "summary",
		},
		{
			name: "exercise rest",
			mutate: func(m map[string]any) {
				day := m["workoutPlan"].([]any)[0].(map[string]any)
				ex := day["exercises"].([]any)[1].(map[string]any)
				delete(ex, "rest")
			},
			path: "workoutPlan[0].exercises[1].rest",
		},
		{
			name: "macronutrient fats",
			mutate: func(m map[string]any) {
				day := m["nutritionPlan"].([]any)[3].(map[string]any)
				delete(day["macronutrients"].(map[string]any), "fats")
			},
			path: "nutritionPlan[3].macronutrients.fats",
		},
		{
			name: "lifestyle stress management",
			mutate: func(m map[string]any) {
				delete(m["lifestyleRecommendations"].(map[string]any), "stressManagement")
			},
			path: "lifestyleRecommendations.stressManagement",
		},
		{
			name: "null meals",
			mutate: func(m map[string]any) {
				m["nutritionPlan"].([]any)[0].(map[string]any)["meals"] = nil
			},
			path: "nutritionPlan[0].meals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agent.DecodePlan(mutatePlan(t, tt.mutate))
			var serr *agent.SchemaError
			require.True(t, errors.As(err, &serr), "expected SchemaError, got %v", err)
			assert.Equal(t, tt.path, serr.Path)
		})
	}
}

func TestDecodePlanRejectsWrongTypes(t *testing.T) {
	wrongSets := mutatePlan(t, func(m map[string]any) {
		day := m["workoutPlan"].([]any)[0].(map[string]any)
		day["exercises"].([]any)[0].(map[string]any)["sets"] = "three"
	})
	_, err := agent.DecodePlan(wrongSets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected integer")

	fractional := mutatePlan(t, func(m map[string]any) {
		m["nutritionPlan"].([]any)[0].(map[string]any)["totalCalories"] = 1999.5
	})
	_, err = agent.DecodePlan(fractional)
	require.Error(t, err)

	notArray := mutatePlan(t, func(m map[string]any) { m["workoutPlan"] = "daily walks" })
	_, err = agent.DecodePlan(notArray)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected array")
}

func TestDecodePlanNotesAreOptional(t *testing.T) {
	raw := mutatePlan(t, func(m map[string]any) {
		for _, d := range m["workoutPlan"].([]any) {
			delete(d.(map[string]any), "notes")
		}
	})
	plan, err := agent.DecodePlan(raw)
	require.NoError(t, err)
	assert.Empty(t, plan.WorkoutPlan[0].Notes)
}

func TestDecodePlanRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not json", "[1,2,3]", strings.Repeat("{", 3)} {
		_, err := agent.DecodePlan(in)
		assert.Error(t, err, "input %q", in)
	}
}
