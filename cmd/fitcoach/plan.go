package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/view"
)

type planFlags struct {
	goal     string
	gender   string
	age      int
	height   float64
	weight   float64
	activity string
	diet     string
	sleep    float64
	water    float64
	asJSON   bool
}

// planner is the part of agent.Service the plan command needs.
type planner interface {
	GeneratePlan(ctx context.Context, a domain.Assessment) (*domain.FitnessPlan, error)
}

func planCmd(opts *globalOptions) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a plan from flags and print it",
		Example: `  fitcoach plan --goal gain_muscle --gender male --age 30 --height 180 \
    --weight 75 --activity moderately_active --diet omnivore --sleep 7 --water 2.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := f.draft(cmd.Flags().Changed)
			if _, err := draft.Complete(); err != nil {
				return describe(err)
			}

			logger, closeLog, err := opts.newLogger(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			svc, err := opts.newAssistant(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			return runPlan(cmd.Context(), cmd.OutOrStdout(), svc, draft, f.asJSON)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.goal, "goal", "", "Primary goal (lose_weight, gain_muscle, both)")
	fl.StringVar(&f.gender, "gender", "", "Gender (male, female, other)")
	fl.IntVar(&f.age, "age", 0, "Age in years")
	fl.Float64Var(&f.height, "height", 0, "Height in cm")
	fl.Float64Var(&f.weight, "weight", 0, "Weight in kg")
	fl.StringVar(&f.activity, "activity", "", "Activity level (sedentary, lightly_active, moderately_active, very_active)")
	fl.StringVar(&f.diet, "diet", "", "Dietary preference, e.g. omnivore, vegetarian, vegan")
	fl.Float64Var(&f.sleep, "sleep", 0, "Average sleep in hours per night")
	fl.Float64Var(&f.water, "water", 0, "Daily water intake in liters")
	fl.BoolVar(&f.asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

// draft keeps only the flags the user actually set so missing answers are
// reported as missing rather than as zero.
func (f planFlags) draft(changed func(name string) bool) domain.AssessmentDraft {
	var d domain.AssessmentDraft
	if changed("goal") {
		g := domain.Goal(f.goal)
		d.Goal = &g
	}
	if changed("gender") {
		g := domain.Gender(f.gender)
		d.Gender = &g
	}
	if changed("age") {
		d.Age = &f.age
	}
	if changed("height") {
		d.Height = &f.height
	}
	if changed("weight") {
		d.Weight = &f.weight
	}
	if changed("activity") {
		a := domain.ActivityLevel(f.activity)
		d.ActivityLevel = &a
	}
	if changed("diet") {
		d.DietaryPreference = &f.diet
	}
	if changed("sleep") {
		d.SleepHours = &f.sleep
	}
	if changed("water") {
		d.WaterIntake = &f.water
	}
	return d
}

// describe turns a validation error into one line per field.
func describe(err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := make([]string, 0, len(verr.Fields))
	for _, fe := range verr.Fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", fe.Field, fe.Message))
	}
	return fmt.Errorf("incomplete assessment:\n%s", strings.Join(lines, "\n"))
}

func runPlan(ctx context.Context, out io.Writer, p planner, draft domain.AssessmentDraft, asJSON bool) error {
	a, err := draft.Complete()
	if err != nil {
		return describe(err)
	}

	plan, err := p.GeneratePlan(ctx, a)
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	return view.WriteText(out, plan)
}
