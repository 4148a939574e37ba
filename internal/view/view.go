// Package view turns a fitness plan into the presentation models shown by
// the dashboard page, the JSON plan endpoints and the terminal UI.
//
// Nothing here computes new data. Plans come from a model and can be
// ragged, so every lookup tolerates missing days and empty slices.
package view

import (
	"strconv"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/session"
)

// Dashboard tabs.
const (
	TabWorkout   = "workout"
	TabNutrition = "nutrition"
)

// Fixed dashboard copy.
const (
	NoPlanMessage  = "No plan available. Please complete the assessment."
	LoadingMessage = "Loading your dashboard..."
	HabitsTitle    = "Lifestyle Habits"
	fallbackDay    = "Monday"
)

// WorkoutView is the accordion of workout days.
type WorkoutView struct {
	OpenDay string           `json:"openDay"`
	Days    []WorkoutDayView `json:"days"`
}

// WorkoutDayView is one accordion item.
type WorkoutDayView struct {
	Day       string         `json:"day"`
	Focus     string         `json:"focus"`
	Open      bool           `json:"open"`
	Exercises []ExerciseLine `json:"exercises"`
	Notes     string         `json:"notes,omitempty"`
}

// ExerciseLine is an exercise name plus its prescription text.
type ExerciseLine struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// NutritionView is the day tab strip plus the selected day's details.
type NutritionView struct {
	Selected string            `json:"selected"`
	Tabs     []DayTab          `json:"tabs"`
	Day      *NutritionDayView `json:"dayDetails,omitempty"`
}

// DayTab is one entry of the nutrition tab strip.
type DayTab struct {
	Day      string `json:"day"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// NutritionDayView holds the formatted targets and meals for one day.
type NutritionDayView struct {
	Day      string     `json:"day"`
	Calories int        `json:"calories"`
	Protein  string     `json:"protein"`
	Carbs    string     `json:"carbs"`
	Fats     string     `json:"fats"`
	Meals    []MealView `json:"meals"`
}

// MealView is one sample meal.
type MealView struct {
	Name        string `json:"name"`
	Calories    string `json:"calories"`
	Description string `json:"description"`
}

// Habit is one lifestyle recommendation.
type Habit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultOpenDay is the first workout day, or "" for an empty plan.
func DefaultOpenDay(plan *domain.FitnessPlan) string {
	if plan == nil || len(plan.WorkoutPlan) == 0 {
		return ""
	}
	return plan.WorkoutPlan[0].Day
}

// ToggleDay returns the open day after day's header was activated.
func ToggleDay(open, day string) string {
	if open == day {
		return ""
	}
	return day
}

// Workout builds the accordion with openDay expanded. An empty openDay
// collapses every item.
func Workout(plan *domain.FitnessPlan, openDay string) WorkoutView {
	v := WorkoutView{OpenDay: openDay, Days: []WorkoutDayView{}}
	if plan == nil {
		return v
	}
	for _, w := range plan.WorkoutPlan {
		day := WorkoutDayView{
			Day:       w.Day,
			Focus:     w.Focus,
			Open:      openDay != "" && w.Day == openDay,
			Exercises: make([]ExerciseLine, 0, len(w.Exercises)),
			Notes:     w.Notes,
		}
		for _, ex := range w.Exercises {
			day.Exercises = append(day.Exercises, ExerciseLine{Name: ex.Name, Detail: ExerciseDetail(ex)})
		}
		v.Days = append(v.Days, day)
	}
	return v
}

// ExerciseDetail formats "<sets> sets x <reps> reps, <rest> rest".
func ExerciseDetail(ex domain.WorkoutExercise) string {
	return strconv.Itoa(ex.Sets) + " sets x " + ex.Reps + " reps, " + ex.Rest + " rest"
}

// DefaultNutritionDay is the first nutrition day, or Monday for a plan
// without one.
func DefaultNutritionDay(plan *domain.FitnessPlan) string {
	if plan == nil || len(plan.NutritionPlan) == 0 || plan.NutritionPlan[0].Day == "" {
		return fallbackDay
	}
	return plan.NutritionPlan[0].Day
}

// Nutrition builds the tab strip with selected highlighted. An empty
// selected falls back to DefaultNutritionDay. Day is nil when the plan has
// no entry for the selection.
func Nutrition(plan *domain.FitnessPlan, selected string) NutritionView {
	if selected == "" {
		selected = DefaultNutritionDay(plan)
	}
	v := NutritionView{Selected: selected, Tabs: []DayTab{}}
	if plan == nil {
		return v
	}
	for _, n := range plan.NutritionPlan {
		v.Tabs = append(v.Tabs, DayTab{Day: n.Day, Label: ShortDay(n.Day), Selected: n.Day == selected})
	}
	if n := plan.NutritionDay(selected); n != nil {
		v.Day = nutritionDay(n)
	}
	return v
}

func nutritionDay(n *domain.DailyNutrition) *NutritionDayView {
	d := &NutritionDayView{
		Day:      n.Day,
		Calories: n.TotalCalories,
		Protein:  grams(n.Macronutrients.Protein),
		Carbs:    grams(n.Macronutrients.Carbs),
		Fats:     grams(n.Macronutrients.Fats),
		Meals:    make([]MealView, 0, len(n.Meals)),
	}
	for _, m := range n.Meals {
		d.Meals = append(d.Meals, MealView{
			Name:        m.Name,
			Calories:    "~" + strconv.Itoa(m.Calories) + " kcal",
			Description: m.Description,
		})
	}
	return d
}

func grams(n int) string { return strconv.Itoa(n) + "g" }

// ShortDay returns the first three characters of day.
func ShortDay(day string) string {
	r := []rune(day)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Lifestyle returns the sleep, hydration and stress habits in display order.
func Lifestyle(plan *domain.FitnessPlan) []Habit {
	var l domain.LifestyleRecommendations
	if plan != nil {
		l = plan.LifestyleRecommendations
	}
	return []Habit{
		{Title: "Sleep", Description: l.Sleep},
		{Title: "Hydration", Description: l.Hydration},
		{Title: "Stress Management", Description: l.StressManagement},
	}
}

// TabLink is one dashboard tab.
type TabLink struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	UserName   string               `json:"userName,omitempty"`
	HasPlan    bool                 `json:"hasPlan"`
	Loading    bool                 `json:"loading"`
	Message    string               `json:"message,omitempty"`
	Title      string               `json:"title,omitempty"`
	Summary    string               `json:"summary,omitempty"`
	Tab        string               `json:"tab"`
	Tabs       []TabLink            `json:"tabs"`
	Workout    WorkoutView          `json:"workout"`
	Nutrition  NutritionView        `json:"nutrition"`
	Habits     []Habit              `json:"habits"`
	Transcript []domain.ChatMessage `json:"transcript"`
}

// NormalizeTab maps anything other than TabNutrition to TabWorkout.
func NormalizeTab(tab string) string {
	if tab == TabNutrition {
		return TabNutrition
	}
	return TabWorkout
}

// Dashboard builds the dashboard for snap. tab picks the active plan view and
// day the nutrition day; both fall back to their defaults when empty. open is
// the expanded workout day, empty to collapse all.
func Dashboard(snap session.Snapshot, tab, day, open string) DashboardView {
	tab = NormalizeTab(tab)
	v := DashboardView{
		Loading: snap.Loading,
		Tab:     tab,
		Tabs: []TabLink{
			{ID: TabWorkout, Label: "Workout Plan", Active: tab == TabWorkout},
			{ID: TabNutrition, Label: "Nutrition Guide", Active: tab == TabNutrition},
		},
		Transcript: snap.Transcript,
	}
	if snap.User != nil {
		v.UserName = snap.User.Name
	}
	if v.Transcript == nil {
		v.Transcript = []domain.ChatMessage{}
	}

	plan := snap.Plan
	if plan == nil {
		v.Message = NoPlanMessage
		if snap.Loading {
			v.Message = LoadingMessage
		}
		v.Workout = Workout(nil, "")
		v.Nutrition = Nutrition(nil, day)
		v.Habits = []Habit{}
		return v
	}

	v.HasPlan = true
	v.Title = plan.Title
	v.Summary = plan.Summary
	v.Workout = Workout(plan, open)
	v.Nutrition = Nutrition(plan, day)
	v.Habits = Lifestyle(plan)
	return v
}
