package domain

import (
	"errors"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func fullDraft() AssessmentDraft {
	return AssessmentDraft{
		Goal:              ptr(GoalLoseWeight),
		Gender:            ptr(GenderMale),
		Age:               ptr(25),
		Height:            ptr(175.0),
		Weight:            ptr(80.0),
		ActivityLevel:     ptr(ActivitySedentary),
		DietaryPreference: ptr("omnivore"),
		SleepHours:        ptr(7.0),
		WaterIntake:       ptr(2.0),
	}
}

func TestDraftCompleteSucceedsWhenAllFieldsPresent(t *testing.T) {
	t.Parallel()

	got, err := fullDraft().Complete()
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got.Goal != GoalLoseWeight || got.Age != 25 || got.DietaryPreference != "omnivore" {
		t.Fatalf("unexpected assessment: %+v", got)
	}
}

func TestDraftCompleteReportsEveryMissingField(t *testing.T) {
	t.Parallel()

	draft := AssessmentDraft{Goal: ptr(GoalBoth)}
	_, err := draft.Complete()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"gender", "age", "height", "weight", "activityLevel", "dietaryPreference", "sleepHours", "waterIntake"} {
		if !verr.Has(field) {
			t.Errorf("expected %s to be reported, got %v", field, verr.Fields)
		}
	}
	if verr.Has("goal") {
		t.Errorf("goal was provided and should not be reported")
	}
}

func TestDraftCompleteRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	draft := fullDraft()
	draft.Goal = ptr(Goal("get_huge"))
	draft.Age = ptr(0)
	draft.DietaryPreference = ptr("   ")

	_, err := draft.Complete()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !verr.Has("goal") || !verr.Has("age") || !verr.Has("dietaryPreference") {
		t.Fatalf("unexpected fields: %v", verr.Fields)
	}
}

func TestEnumLabels(t *testing.T) {
	t.Parallel()

	if got := GoalLoseWeight.Label(); got != "lose weight" {
		t.Errorf("GoalLoseWeight.Label() = %q", got)
	}
	if got := ActivityModeratelyActive.Label(); got != "moderately active" {
		t.Errorf("ActivityModeratelyActive.Label() = %q", got)
	}
}

func TestPlanDayLookup(t *testing.T) {
	t.Parallel()

	plan := &FitnessPlan{
		WorkoutPlan:   []DailyWorkout{{Day: "Monday", Focus: "Legs"}, {Day: "Tuesday", Focus: "Rest"}},
		NutritionPlan: []DailyNutrition{{Day: "Monday", TotalCalories: 2000}},
	}

	if w := plan.WorkoutDay("Tuesday"); w == nil || w.Focus != "Rest" {
		t.Fatalf("WorkoutDay(Tuesday) = %+v", w)
	}
	if w := plan.WorkoutDay("Sunday"); w != nil {
		t.Fatalf("expected nil for missing day, got %+v", w)
	}
	if n := plan.NutritionDay("Monday"); n == nil || n.TotalCalories != 2000 {
		t.Fatalf("NutritionDay(Monday) = %+v", n)
	}
}
