package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/fitcoach/internal/domain"
)

// WriteText renders the whole plan as plain text: header, every workout day,
// every nutrition day and the lifestyle habits.
func WriteText(w io.Writer, plan *domain.FitnessPlan) error {
	bw := bufio.NewWriter(w)
	if plan == nil {
		fmt.Fprintln(bw, NoPlanMessage)
		return bw.Flush()
	}

	fmt.Fprintln(bw, plan.Title)
	fmt.Fprintln(bw, strings.Repeat("=", len([]rune(plan.Title))))
	if plan.Summary != "" {
		fmt.Fprintln(bw, plan.Summary)
	}

	section(bw, "Workout Plan")
	for _, day := range Workout(plan, "").Days {
		writeWorkoutDay(bw, day)
	}

	section(bw, "Nutrition Guide")
	for _, n := range plan.NutritionPlan {
		writeNutritionDay(bw, nutritionDay(&n))
	}

	section(bw, HabitsTitle)
	for _, h := range Lifestyle(plan) {
		fmt.Fprintf(bw, "%s: %s\n", h.Title, h.Description)
	}
	return bw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func writeWorkoutDay(w io.Writer, day WorkoutDayView) {
	fmt.Fprintf(w, "%s: %s\n", day.Day, day.Focus)
	for _, ex := range day.Exercises {
		fmt.Fprintf(w, "  - %s: %s\n", ex.Name, ex.Detail)
	}
	if day.Notes != "" {
		fmt.Fprintf(w, "  Notes: %s\n", day.Notes)
	}
}

func writeNutritionDay(w io.Writer, d *NutritionDayView) {
	fmt.Fprintf(w, "%s: %d kcal (protein %s, carbs %s, fats %s)\n", d.Day, d.Calories, d.Protein, d.Carbs, d.Fats)
	for _, m := range d.Meals {
		fmt.Fprintf(w, "  - %s (%s): %s\n", m.Name, m.Calories, m.Description)
	}
}
