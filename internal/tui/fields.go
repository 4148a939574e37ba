package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
)

type fieldKind int

const (
	kindOption fieldKind = iota
	kindInt
	kindFloat
	kindText
)

type option struct {
	value string
	title string
	desc  string
}

// field is one question on a wizard screen.
type field struct {
	key         string
	label       string
	kind        fieldKind
	options     []option
	placeholder string
}

var goalOptions = []option{
	{string(domain.GoalLoseWeight), "Lose Weight", "Focus on burning fat and improving health."},
	{string(domain.GoalGainMuscle), "Gain Muscle", "Build strength and increase lean muscle mass."},
	{string(domain.GoalBoth), "Both", "A balanced approach to lose fat and build muscle."},
}

var genderOptions = []option{
	{string(domain.GenderMale), "Male", ""},
	{string(domain.GenderFemale), "Female", ""},
	{string(domain.GenderOther), "Other", ""},
}

var activityOptions = []option{
	{string(domain.ActivitySedentary), "Sedentary", "little to no exercise"},
	{string(domain.ActivityLightlyActive), "Lightly Active", "exercise 1-2 days/week"},
	{string(domain.ActivityModeratelyActive), "Moderately Active", "exercise 3-5 days/week"},
	{string(domain.ActivityVeryActive), "Very Active", "exercise 6-7 days/week"},
}

var stepFields = map[assessment.Step][]field{
	assessment.StepGoal: {
		{key: "goal", label: "What's your primary goal?", options: goalOptions},
	},
	assessment.StepProfile: {
		{key: "gender", label: "Gender", options: genderOptions},
		{key: "age", label: "Age", kind: kindInt, placeholder: "e.g. 25"},
		{key: "height", label: "Height (cm)", kind: kindFloat, placeholder: "e.g. 175"},
		{key: "weight", label: "Weight (kg)", kind: kindFloat, placeholder: "e.g. 80"},
	},
	assessment.StepLifestyle: {
		{key: "activityLevel", label: "Activity Level", options: activityOptions},
		{key: "dietaryPreference", label: "Dietary Preference", kind: kindText, placeholder: "e.g., Omnivore, Vegetarian, Vegan"},
		{key: "sleepHours", label: "Avg. Sleep (hours/night)", kind: kindFloat, placeholder: "e.g. 7"},
		{key: "waterIntake", label: "Daily Water (liters)", kind: kindFloat, placeholder: "e.g. 2"},
	},
}

// draftValue returns the current answer for key as text, "" when unanswered.
func draftValue(d domain.AssessmentDraft, key string) string {
	num := func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	switch key {
	case "goal":
		if d.Goal != nil {
			return string(*d.Goal)
		}
	case "gender":
		if d.Gender != nil {
			return string(*d.Gender)
		}
	case "activityLevel":
		if d.ActivityLevel != nil {
			return string(*d.ActivityLevel)
		}
	case "age":
		if d.Age != nil {
			return strconv.Itoa(*d.Age)
		}
	case "height":
		return num(d.Height)
	case "weight":
		return num(d.Weight)
	case "sleepHours":
		return num(d.SleepHours)
	case "waterIntake":
		return num(d.WaterIntake)
	case "dietaryPreference":
		if d.DietaryPreference != nil {
			return *d.DietaryPreference
		}
	}
	return ""
}

func optionIndex(opts []option, value string) int {
	for i, o := range opts {
		if o.value == value {
			return i
		}
	}
	return 0
}

// setAnswer parses raw for f into p.
func setAnswer(p *assessment.Patch, f field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f.kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", f.label)
		}
		p.Age = &n
		return nil
	case kindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", f.label)
		}
		switch f.key {
		case "height":
			p.Height = &v
		case "weight":
			p.Weight = &v
		case "sleepHours":
			p.SleepHours = &v
		case "waterIntake":
			p.WaterIntake = &v
		}
		return nil
	case kindText:
		p.DietaryPreference = &raw
		return nil
	}

	switch f.key {
	case "goal":
		g := domain.Goal(raw)
		p.Goal = &g
	case "gender":
		g := domain.Gender(raw)
		p.Gender = &g
	case "activityLevel":
		a := domain.ActivityLevel(raw)
		p.ActivityLevel = &a
	}
	return nil
}
