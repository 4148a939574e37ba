package view_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/fitcoach/internal/agent/agenttest"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/session"
	"github.com/ashureev/fitcoach/internal/view"
)

func TestWorkoutDefaultsToFirstDay(t *testing.T) {
	t.Parallel()
	plan := agenttest.SamplePlan()

	v := view.Workout(plan, view.DefaultOpenDay(plan))
	require.Len(t, v.Days, 7)
	assert.Equal(t, "Monday", v.OpenDay)
	assert.True(t, v.Days[0].Open)
	for _, d := range v.Days[1:] {
		assert.False(t, d.Open, d.Day)
	}

	assert.Equal(t, "Squats", v.Days[0].Exercises[0].Name)
	assert.Equal(t, "3 sets x 10-12 reps, 60s rest", v.Days[0].Exercises[0].Detail)
	assert.Equal(t, "Warm up for 5 minutes first.", v.Days[0].Notes)
	assert.Empty(t, v.Days[1].Notes)
	assert.Empty(t, v.Days[2].Exercises)
	assert.NotNil(t, v.Days[2].Exercises)
}

func TestWorkoutCollapsed(t *testing.T) {
	t.Parallel()
	v := view.Workout(agenttest.SamplePlan(), "")
	for _, d := range v.Days {
		assert.False(t, d.Open)
	}
	assert.Empty(t, view.Workout(nil, "").Days)
	assert.Empty(t, view.DefaultOpenDay(&domain.FitnessPlan{}))
}

func TestToggleDay(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", view.ToggleDay("Monday", "Monday"))
	assert.Equal(t, "Tuesday", view.ToggleDay("Monday", "Tuesday"))
	assert.Equal(t, "Friday", view.ToggleDay("", "Friday"))
}

func TestNutritionTabsAndSelection(t *testing.T) {
	t.Parallel()
	plan := agenttest.SamplePlan()

	v := view.Nutrition(plan, "")
	assert.Equal(t, "Monday", v.Selected)
	require.Len(t, v.Tabs, 7)
	assert.Equal(t, "Mon", v.Tabs[0].Label)
	assert.True(t, v.Tabs[0].Selected)
	require.NotNil(t, v.Day)
	assert.Equal(t, 2000, v.Day.Calories)
	assert.Equal(t, "150g", v.Day.Protein)
	assert.Equal(t, "200g", v.Day.Carbs)
	assert.Equal(t, "60g", v.Day.Fats)
	require.Len(t, v.Day.Meals, 3)
	assert.Equal(t, "~450 kcal", v.Day.Meals[0].Calories)
	assert.Equal(t, "Oatmeal with berries", v.Day.Meals[0].Description)

	v = view.Nutrition(plan, "Thursday")
	assert.True(t, v.Tabs[3].Selected)
	assert.False(t, v.Tabs[0].Selected)
	assert.Equal(t, 2030, v.Day.Calories)

	v = view.Nutrition(plan, "Funday")
	assert.Nil(t, v.Day)
}

func TestNutritionEmptyPlanFallsBackToMonday(t *testing.T) {
	t.Parallel()
	v := view.Nutrition(&domain.FitnessPlan{}, "")
	assert.Equal(t, "Monday", v.Selected)
	assert.Empty(t, v.Tabs)
	assert.Nil(t, v.Day)
}

func TestShortDay(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Wed", view.ShortDay("Wednesday"))
	assert.Equal(t, "Mo", view.ShortDay("Mo"))
	assert.Equal(t, "Día", view.ShortDay("Día 1"))
}

func TestLifestyle(t *testing.T) {
	t.Parallel()
	habits := view.Lifestyle(agenttest.SamplePlan())
	require.Len(t, habits, 3)
	assert.Equal(t, []string{"Sleep", "Hydration", "Stress Management"},
		[]string{habits[0].Title, habits[1].Title, habits[2].Title})
	assert.Contains(t, habits[1].Description, "2.5 liters")
}

func TestDashboardWithoutPlan(t *testing.T) {
	t.Parallel()

	v := view.Dashboard(session.Snapshot{}, "", "", "")
	assert.False(t, v.HasPlan)
	assert.Equal(t, view.NoPlanMessage, v.Message)
	assert.Equal(t, view.TabWorkout, v.Tab)
	assert.NotNil(t, v.Transcript)

	v = view.Dashboard(session.Snapshot{Loading: true}, "nutrition", "", "")
	assert.Equal(t, view.LoadingMessage, v.Message)
	assert.Equal(t, view.TabNutrition, v.Tab)
}

func TestDashboardWithPlan(t *testing.T) {
	t.Parallel()
	snap := session.Snapshot{
		User: &domain.User{Name: "Alex"},
		Plan: agenttest.SamplePlan(),
		Transcript: []domain.ChatMessage{
			{Role: domain.RoleModel, Text: "Hi Alex!"},
		},
	}

	v := view.Dashboard(snap, "nutrition", "Friday", "Monday")
	assert.True(t, v.HasPlan)
	assert.Empty(t, v.Message)
	assert.Equal(t, "Alex", v.UserName)
	assert.Equal(t, "Your 4-Week Kickstart", v.Title)
	assert.Equal(t, "Friday", v.Nutrition.Selected)
	assert.Equal(t, "Monday", v.Workout.OpenDay)
	require.Len(t, v.Tabs, 2)
	assert.Equal(t, "Workout Plan", v.Tabs[0].Label)
	assert.Equal(t, "Nutrition Guide", v.Tabs[1].Label)
	assert.True(t, v.Tabs[1].Active)
	assert.Len(t, v.Habits, 3)
	assert.Len(t, v.Transcript, 1)

	assert.Equal(t, view.TabWorkout, view.Dashboard(snap, "bogus", "", "").Tab)

	v = view.Dashboard(snap, "", "", "Thursday")
	assert.Equal(t, "Thursday", v.Workout.OpenDay)
	assert.Empty(t, view.Dashboard(snap, "", "", "").Workout.OpenDay)
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, view.WriteText(&buf, agenttest.SamplePlan()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Your 4-Week Kickstart\n"))
	for _, want := range []string{
		"Workout Plan",
		"Monday: Full Body Strength",
		"  - Squats: 3 sets x 10-12 reps, 60s rest",
		"  Notes: Warm up for 5 minutes first.",
		"Wednesday: Rest",
		"Nutrition Guide",
		"Sunday: 2060 kcal (protein 150g, carbs 200g, fats 60g)",
		"  - Dinner (~700 kcal): Salmon with rice",
		"Lifestyle Habits",
		"Stress Management: Take a 10 minute walk after lunch.",
	} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, view.WriteText(&buf, nil))
	assert.Equal(t, view.NoPlanMessage+"\n", buf.String())
}
