// Package assessment implements the four-step assessment wizard.
package assessment

import (
	"fmt"
	"strconv"

	"github.com/ashureev/fitcoach/internal/domain"
)

// Step is a wizard position, 1-based.
type Step int

const (
	StepGoal Step = iota + 1
	StepProfile
	StepLifestyle
	StepConfirmation
)

// FirstStep and LastStep bound every transition.
const (
	FirstStep = StepGoal
	LastStep  = StepConfirmation
)

var stepTitles = map[Step]string{
	StepGoal:         "Your Goal",
	StepProfile:      "Your Profile",
	StepLifestyle:    "Your Lifestyle",
	StepConfirmation: "Confirmation",
}

// Title returns the heading shown for the step.
func (s Step) Title() string {
	return stepTitles[s]
}

// StepInfo describes one wizard step for rendering.
type StepInfo struct {
	ID    Step   `json:"id"`
	Title string `json:"title"`
}

// Steps lists every step in order.
func Steps() []StepInfo {
	out := make([]StepInfo, 0, int(LastStep))
	for s := FirstStep; s <= LastStep; s++ {
		out = append(out, StepInfo{ID: s, Title: s.Title()})
	}
	return out
}

// Patch is a partial update to the draft; nil fields are left untouched.
type Patch = domain.AssessmentDraft

// Row is one line of the confirmation summary.
type Row struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Wizard tracks the current step and the draft answers.
// It is not safe for concurrent use; the session store serializes access.
type Wizard struct {
	step  Step
	draft domain.AssessmentDraft
}

// NewWizard returns a wizard at the first step with the default choices preselected.
func NewWizard() *Wizard {
	w := &Wizard{}
	w.Reset()
	return w
}

// Reset returns to the first step and restores the default draft.
func (w *Wizard) Reset() {
	goal := domain.GoalLoseWeight
	gender := domain.GenderMale
	activity := domain.ActivitySedentary
	w.step = FirstStep
	w.draft = domain.AssessmentDraft{
		Goal:          &goal,
		Gender:        &gender,
		ActivityLevel: &activity,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Next advances one step; a no-op on the last step.
func (w *Wizard) Next() Step {
	if w.step < LastStep {
		w.step++
	}
	return w.step
}

// Prev goes back one step; a no-op on the first step.
func (w *Wizard) Prev() Step {
	if w.step > FirstStep {
		w.step--
	}
	return w.step
}

// GoTo jumps to step, clamped to the wizard's range.
func (w *Wizard) GoTo(step Step) Step {
	switch {
	case step < FirstStep:
		step = FirstStep
	case step > LastStep:
		step = LastStep
	}
	w.step = step
	return w.step
}

// Progress returns completion in percent for the progress bar.
func (w *Wizard) Progress() int {
	return int(w.step) * 100 / int(LastStep)
}

// Draft returns a copy of the current answers.
func (w *Wizard) Draft() domain.AssessmentDraft {
	return cloneDraft(w.draft)
}

// Apply merges the non-nil fields of p into the draft.
func (w *Wizard) Apply(p Patch) {
	if p.Goal != nil {
		v := *p.Goal
		w.draft.Goal = &v
	}
	if p.Gender != nil {
		v := *p.Gender
		w.draft.Gender = &v
	}
	if p.Age != nil {
		v := *p.Age
		w.draft.Age = &v
	}
	if p.Height != nil {
		v := *p.Height
		w.draft.Height = &v
	}
	if p.Weight != nil {
		v := *p.Weight
		w.draft.Weight = &v
	}
	if p.ActivityLevel != nil {
		v := *p.ActivityLevel
		w.draft.ActivityLevel = &v
	}
	if p.DietaryPreference != nil {
		v := *p.DietaryPreference
		w.draft.DietaryPreference = &v
	}
	if p.SleepHours != nil {
		v := *p.SleepHours
		w.draft.SleepHours = &v
	}
	if p.WaterIntake != nil {
		v := *p.WaterIntake
		w.draft.WaterIntake = &v
	}
}

// Complete validates the draft and returns the typed assessment.
func (w *Wizard) Complete() (domain.Assessment, error) {
	return w.draft.Complete()
}

// Summary returns the confirmation rows for every answered field, in form order.
func (w *Wizard) Summary() []Row {
	d := w.draft
	var rows []Row
	if d.Goal != nil {
		rows = append(rows, Row{Field: "goal", Label: "Goal", Value: d.Goal.Label()})
	}
	if d.Gender != nil {
		rows = append(rows, Row{Field: "gender", Label: "Gender", Value: d.Gender.Label()})
	}
	if d.Age != nil {
		rows = append(rows, Row{Field: "age", Label: "Age", Value: strconv.Itoa(*d.Age)})
	}
	if d.Height != nil {
		rows = append(rows, Row{Field: "height", Label: "Height", Value: formatNumber(*d.Height) + " cm"})
	}
	if d.Weight != nil {
		rows = append(rows, Row{Field: "weight", Label: "Weight", Value: formatNumber(*d.Weight) + " kg"})
	}
	if d.ActivityLevel != nil {
		rows = append(rows, Row{Field: "activityLevel", Label: "Activity Level", Value: d.ActivityLevel.Label()})
	}
	if d.DietaryPreference != nil {
		rows = append(rows, Row{Field: "dietaryPreference", Label: "Dietary Preference", Value: *d.DietaryPreference})
	}
	if d.SleepHours != nil {
		rows = append(rows, Row{Field: "sleepHours", Label: "Sleep", Value: formatNumber(*d.SleepHours) + " hours"})
	}
	if d.WaterIntake != nil {
		rows = append(rows, Row{Field: "waterIntake", Label: "Water Intake", Value: formatNumber(*d.WaterIntake) + " liters"})
	}
	return rows
}

// formatNumber drops a trailing ".0" so whole numbers read naturally.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cloneDraft(d domain.AssessmentDraft) domain.AssessmentDraft {
	var w Wizard
	w.Apply(d)
	return w.draft
}

// ParseStep converts a 1-based step number, clamping out-of-range values.
func ParseStep(s string) (Step, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return FirstStep, fmt.Errorf("parse step %q: %w", s, err)
	}
	switch {
	case n < int(FirstStep):
		return FirstStep, nil
	case n > int(LastStep):
		return LastStep, nil
	}
	return Step(n), nil
}
