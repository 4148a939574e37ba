package agent

import (
	"fmt"
	"math"

	"google.golang.org/genai"
)

// PlanSchema is the response schema sent with every plan request.
// DecodePlan validates model output against the same value.
func PlanSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	integer := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeInteger, Description: desc}
	}

	exercise := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name": str(""),
			"sets": integer(""),
			"reps": str("Can be a range like '8-12' or time like '30s'."),
			"rest": str("Rest time between sets, e.g., '60s'."),
		},
		Required: []string{"name", "sets", "reps", "rest"},
	}

	workoutDay := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"day":       str("Day of the week (e.g., Monday)."),
			"focus":     str("The main focus of the day's workout (e.g., 'Full Body Strength', 'Cardio & Core', 'Rest')."),
			"exercises": {Type: genai.TypeArray, Items: exercise},
			"notes":     str("Optional notes for the day, like warm-up or cool-down."),
		},
		Required: []string{"day", "focus", "exercises"},
	}

	macros := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"protein": integer("in grams"),
			"carbs":   integer("in grams"),
			"fats":    integer("in grams"),
		},
		Required: []string{"protein", "carbs", "fats"},
	}

	meal := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        str("e.g., 'Breakfast', 'Lunch', 'Dinner', 'Snack'"),
			"description": str("A sample meal suggestion."),
			"calories":    integer(""),
		},
		Required: []string{"name", "description", "calories"},
	}

	nutritionDay := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"day":            str(""),
			"totalCalories":  integer(""),
			"macronutrients": macros,
			"meals":          {Type: genai.TypeArray, Items: meal},
		},
		Required: []string{"day", "totalCalories", "macronutrients", "meals"},
	}

	lifestyle := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sleep":            str("Specific sleep advice."),
			"hydration":        str("Specific hydration advice."),
			"stressManagement": str("Tips for managing stress."),
		},
		Required: []string{"sleep", "hydration", "stressManagement"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":                    str("A catchy and motivational title for the fitness plan."),
			"summary":                  str("A brief, encouraging summary of the plan's approach."),
			"workoutPlan":              {Type: genai.TypeArray, Description: "A 7-day workout schedule.", Items: workoutDay},
			"nutritionPlan":            {Type: genai.TypeArray, Description: "A 7-day nutrition guide.", Items: nutritionDay},
			"lifestyleRecommendations": lifestyle,
		},
		Required: []string{"title", "summary", "workoutPlan", "nutritionPlan", "lifestyleRecommendations"},
	}
}

// SchemaError reports the first place a decoded value departs from the schema.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

// validateValue checks v, as produced by encoding/json into an any, against s.
// Only required keys and primitive types are enforced; unknown keys pass.
func validateValue(v any, s *genai.Schema, path string) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case genai.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return &SchemaError{Path: path, Reason: "expected object"}
		}
		for _, key := range s.Required {
			if val, ok := obj[key]; !ok || val == nil {
				return &SchemaError{Path: join(path, key), Reason: "required field missing"}
			}
		}
		for key, child := range s.Properties {
			val, ok := obj[key]
			if !ok || val == nil {
				continue
			}
			if err := validateValue(val, child, join(path, key)); err != nil {
				return err
			}
		}
	case genai.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return &SchemaError{Path: path, Reason: "expected array"}
		}
		for i, item := range arr {
			if err := validateValue(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case genai.TypeString:
		if _, ok := v.(string); !ok {
			return &SchemaError{Path: path, Reason: "expected string"}
		}
	case genai.TypeInteger:
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return &SchemaError{Path: path, Reason: "expected integer"}
		}
	case genai.TypeNumber:
		if _, ok := v.(float64); !ok {
			return &SchemaError{Path: path, Reason: "expected number"}
		}
	case genai.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return &SchemaError{Path: path, Reason: "expected boolean"}
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
