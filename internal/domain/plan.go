package domain

// FitnessPlan is the structured 7-day plan produced by the model for one assessment.
type FitnessPlan struct {
	Title                    string                   `json:"title"`
	Summary                  string                   `json:"summary"`
	WorkoutPlan              []DailyWorkout           `json:"workoutPlan"`
	NutritionPlan            []DailyNutrition         `json:"nutritionPlan"`
	LifestyleRecommendations LifestyleRecommendations `json:"lifestyleRecommendations"`
}

// DailyWorkout is one day of the workout schedule.
type DailyWorkout struct {
	Day       string            `json:"day"`
	Focus     string            `json:"focus"`
	Exercises []WorkoutExercise `json:"exercises"`
	Notes     string            `json:"notes,omitempty"`
}

// WorkoutExercise is a single exercise prescription.
// Reps and Rest are free-form ("8-12", "30s").
type WorkoutExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

// DailyNutrition is one day of the nutrition guide.
type DailyNutrition struct {
	Day            string         `json:"day"`
	TotalCalories  int            `json:"totalCalories"`
	Macronutrients Macronutrients `json:"macronutrients"`
	Meals          []Meal         `json:"meals"`
}

// Macronutrients are daily targets in grams.
type Macronutrients struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fats    int `json:"fats"`
}

// Meal is a sample meal suggestion.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
}

// LifestyleRecommendations holds the sleep/hydration/stress advice triple.
type LifestyleRecommendations struct {
	Sleep            string `json:"sleep"`
	Hydration        string `json:"hydration"`
	StressManagement string `json:"stressManagement"`
}

// WorkoutDay returns the workout for day, or nil when the plan has no such day.
func (p *FitnessPlan) WorkoutDay(day string) *DailyWorkout {
	for i := range p.WorkoutPlan {
		if p.WorkoutPlan[i].Day == day {
			return &p.WorkoutPlan[i]
		}
	}
	return nil
}

// NutritionDay returns the nutrition entry for day, or nil when absent.
func (p *FitnessPlan) NutritionDay(day string) *DailyNutrition {
	for i := range p.NutritionPlan {
		if p.NutritionPlan[i].Day == day {
			return &p.NutritionPlan[i]
		}
	}
	return nil
}
