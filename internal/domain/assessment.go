package domain

import (
	"fmt"
	"strings"
)

// Goal is the user's primary fitness goal.
type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
	GoalBoth       Goal = "both"
)

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainMuscle, GoalBoth:
		return true
	}
	return false
}

// Label renders the goal for humans and prompts ("lose weight").
func (g Goal) Label() string { return humanize(string(g)) }

// Gender as reported by the user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender option.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Label renders the gender for humans and prompts.
func (g Gender) Label() string { return humanize(string(g)) }

// ActivityLevel describes how active the user is day to day.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
)

// Valid reports whether a is a known activity level.
func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLightlyActive, ActivityModeratelyActive, ActivityVeryActive:
		return true
	}
	return false
}

// Label renders the activity level for humans and prompts ("lightly active").
func (a ActivityLevel) Label() string { return humanize(string(a)) }

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// Assessment is a complete, validated set of answers collected by the wizard.
// Values of this type only come out of AssessmentDraft.Complete.
type Assessment struct {
	Goal              Goal          `json:"goal"`
	Gender            Gender        `json:"gender"`
	Age               int           `json:"age"`
	Height            float64       `json:"height"` // cm
	Weight            float64       `json:"weight"` // kg
	ActivityLevel     ActivityLevel `json:"activityLevel"`
	DietaryPreference string        `json:"dietaryPreference"`
	SleepHours        float64       `json:"sleepHours"`
	WaterIntake       float64       `json:"waterIntake"` // liters
}

// AssessmentDraft is the partially filled form while the wizard is open.
// Nil means "not answered yet".
type AssessmentDraft struct {
	Goal              *Goal          `json:"goal,omitempty"`
	Gender            *Gender        `json:"gender,omitempty"`
	Age               *int           `json:"age,omitempty"`
	Height            *float64       `json:"height,omitempty"`
	Weight            *float64       `json:"weight,omitempty"`
	ActivityLevel     *ActivityLevel `json:"activityLevel,omitempty"`
	DietaryPreference *string        `json:"dietaryPreference,omitempty"`
	SleepHours        *float64       `json:"sleepHours,omitempty"`
	WaterIntake       *float64       `json:"waterIntake,omitempty"`
}

// FieldError describes one missing or invalid assessment field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that kept a draft from completing.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("assessment incomplete: %s", strings.Join(names, ", "))
}

// Has reports whether field is among the failing fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Complete converts the draft into a typed Assessment.
// It fails with a *ValidationError naming every missing or invalid field.
func (d AssessmentDraft) Complete() (Assessment, error) {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	switch {
	case d.Goal == nil:
		add("goal", "required")
	case !d.Goal.Valid():
		add("goal", "must be one of lose_weight, gain_muscle, both")
	}
	switch {
	case d.Gender == nil:
		add("gender", "required")
	case !d.Gender.Valid():
		add("gender", "must be one of male, female, other")
	}
	switch {
	case d.Age == nil:
		add("age", "required")
	case *d.Age <= 0:
		add("age", "must be positive")
	}
	switch {
	case d.Height == nil:
		add("height", "required")
	case *d.Height <= 0:
		add("height", "must be positive")
	}
	switch {
	case d.Weight == nil:
		add("weight", "required")
	case *d.Weight <= 0:
		add("weight", "must be positive")
	}
	switch {
	case d.ActivityLevel == nil:
		add("activityLevel", "required")
	case !d.ActivityLevel.Valid():
		add("activityLevel", "must be one of sedentary, lightly_active, moderately_active, very_active")
	}
	if d.DietaryPreference == nil || strings.TrimSpace(*d.DietaryPreference) == "" {
		add("dietaryPreference", "required")
	}
	switch {
	case d.SleepHours == nil:
		add("sleepHours", "required")
	case *d.SleepHours <= 0:
		add("sleepHours", "must be positive")
	}
	switch {
	case d.WaterIntake == nil:
		add("waterIntake", "required")
	case *d.WaterIntake <= 0:
		add("waterIntake", "must be positive")
	}

	if len(errs) > 0 {
		return Assessment{}, &ValidationError{Fields: errs}
	}

	return Assessment{
		Goal:              *d.Goal,
		Gender:            *d.Gender,
		Age:               *d.Age,
		Height:            *d.Height,
		Weight:            *d.Weight,
		ActivityLevel:     *d.ActivityLevel,
		DietaryPreference: strings.TrimSpace(*d.DietaryPreference),
		SleepHours:        *d.SleepHours,
		WaterIntake:       *d.WaterIntake,
	}, nil
}
