package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/view"
)

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case stateGenerating:
		return m.viewGenerating()
	case stateFailed:
		return m.viewFailed()
	case stateDashboard:
		return m.viewDashboard()
	}
	return m.viewWizard()
}

func (m Model) viewWizard() string {
	snap := m.sess.Snapshot()
	var b strings.Builder

	b.WriteString(styleTitle.Render("Fitness Assessment"))
	b.WriteString("\n")
	b.WriteString(stepper(snap.Step))
	b.WriteString("\n")
	b.WriteString(progressBar(snap.Progress))
	b.WriteString("\n\n")
	b.WriteString(styleHeading.Render(snap.StepTitle))
	b.WriteString("\n\n")

	if snap.Step == assessment.StepConfirmation {
		b.WriteString("Please review your information below. If everything looks correct, generate your plan.\n\n")
		if len(snap.Summary) == 0 {
			b.WriteString(styleSubtle.Render("No answers yet."))
			b.WriteString("\n")
		}
		for _, row := range snap.Summary {
			fmt.Fprintf(&b, "  %s %s\n", styleSubtle.Render(row.Label+":"), row.Value)
		}
	} else {
		for i, f := range stepFields[snap.Step] {
			b.WriteString(m.renderField(f, i == m.focus))
			b.WriteString("\n")
		}
	}

	if m.note != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render(m.note))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := "tab/↑↓ move • ←/→ choose • enter next • esc back • ctrl+c quit"
	switch snap.Step {
	case assessment.FirstStep:
		help = "←/→ choose • enter next • esc quit"
	case assessment.LastStep:
		help = "enter generate my plan • esc back • ctrl+c quit"
	}
	b.WriteString(styleSubtle.Render(help))
	return b.String()
}

func (m Model) renderField(f field, focused bool) string {
	cursor := "  "
	label := f.label
	if focused {
		cursor = styleFocus.Render("> ")
		label = styleFocus.Render(label)
	}

	if f.kind != kindOption {
		in := m.inputs[f.key]
		return cursor + label + "\n    " + in.View()
	}

	var b strings.Builder
	b.WriteString(cursor + label + "\n")
	selected := m.choice[f.key]
	for i, o := range f.options {
		mark := "( )"
		title := o.title
		if i == selected {
			mark = "(•)"
			title = styleSelected.Render(title)
		}
		b.WriteString("    " + mark + " " + title)
		if o.desc != "" {
			b.WriteString(" " + styleSubtle.Render(o.desc))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// stepper renders "1 Your Goal > 2 Your Profile > ..." with the current step highlighted.
func stepper(current assessment.Step) string {
	parts := make([]string, 0, 4)
	for _, s := range assessment.Steps() {
		label := fmt.Sprintf("%d %s", s.ID, s.Title)
		switch {
		case s.ID == current:
			label = styleSelected.Render(label)
		case s.ID < current:
			label = styleFocus.Render("✓ " + s.Title)
		default:
			label = styleSubtle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, styleSubtle.Render(" › "))
}

func progressBar(percent int) string {
	filled := percent * progressBarSize / 100
	filled = min(max(filled, 0), progressBarSize)
	return styleSelected.Render(strings.Repeat("█", filled)) +
		styleSubtle.Render(strings.Repeat("░", progressBarSize-filled)) +
		fmt.Sprintf(" %d%%", percent)
}

func (m Model) viewGenerating() string {
	return "\n  " + m.spinner.View() + " " + generatingText + "\n"
}

func (m Model) viewFailed() string {
	snap := m.sess.Snapshot()
	msg := snap.Error
	if msg == "" {
		msg = "The plan could not be generated."
	}
	body := styleError.Render("Something went wrong") + "\n\n" + msg + "\n\n" +
		styleSubtle.Render("enter go back • q quit")
	return styleBox.Render(body)
}

func (m Model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.sending > 0 {
		b.WriteString(m.spinner.View() + " " + styleSubtle.Render(m.assistantName+" is typing..."))
	}
	b.WriteString("\n")
	if m.note != "" {
		b.WriteString(styleError.Render(m.note) + "\n")
	}
	b.WriteString(m.chat.View())
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render("tab switch view • ↑/↓ change day • ctrl+t collapse • pgup/pgdn scroll • enter send • esc quit"))
	return b.String()
}

// dashboardContent is the scrollable part of the dashboard: plan, habits
// and the chat transcript.
func (m Model) dashboardContent() string {
	snap := m.sess.Snapshot()
	plan := snap.Plan
	if plan == nil {
		return view.NoPlanMessage
	}

	var b strings.Builder
	if snap.User != nil {
		b.WriteString(styleSubtle.Render("Welcome, "+snap.User.Name) + "\n")
	}
	b.WriteString(styleTitle.Render(plan.Title) + "\n")
	b.WriteString(wrap(plan.Summary, m.width) + "\n\n")

	workoutTab, nutritionTab := styleTabOff, styleTabOn
	if m.tab == view.TabWorkout {
		workoutTab, nutritionTab = styleTabOn, styleTabOff
	}
	b.WriteString(workoutTab.Render("Workout Plan") + "   " + nutritionTab.Render("Nutrition Guide") + "\n\n")

	if m.tab == view.TabWorkout {
		b.WriteString(renderWorkout(view.Workout(plan, m.openDay)))
	} else {
		b.WriteString(renderNutrition(view.Nutrition(plan, m.nutritionDay)))
	}

	b.WriteString("\n" + styleHeading.Render(view.HabitsTitle) + "\n")
	for _, h := range view.Lifestyle(plan) {
		b.WriteString(styleSelected.Render(h.Title) + "\n")
		b.WriteString(wrap(h.Description, m.width) + "\n")
	}

	b.WriteString("\n" + styleHeading.Render("Chat with "+m.assistantName) + "\n")
	b.WriteString(renderTranscript(snap.Transcript, m.assistantName, m.width))
	return b.String()
}

func renderWorkout(w view.WorkoutView) string {
	var b strings.Builder
	for _, d := range w.Days {
		marker := "▸"
		head := d.Day + ": " + d.Focus
		if d.Open {
			marker = "▾"
			head = styleSelected.Render(head)
		}
		b.WriteString(marker + " " + head + "\n")
		if !d.Open {
			continue
		}
		for _, ex := range d.Exercises {
			b.WriteString("    • " + ex.Name + " " + styleSubtle.Render(ex.Detail) + "\n")
		}
		if d.Notes != "" {
			b.WriteString("    " + styleSubtle.Render("Notes: "+d.Notes) + "\n")
		}
	}
	return b.String()
}

func renderNutrition(n view.NutritionView) string {
	var b strings.Builder
	tabs := make([]string, 0, len(n.Tabs))
	for _, t := range n.Tabs {
		if t.Selected {
			tabs = append(tabs, styleTabOn.Render(t.Label))
		} else {
			tabs = append(tabs, styleTabOff.Render(t.Label))
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	if n.Day == nil {
		b.WriteString(styleSubtle.Render("No nutrition details for "+n.Selected) + "\n")
		return b.String()
	}
	d := n.Day
	macros := lipgloss.JoinHorizontal(lipgloss.Top,
		macroCell("Calories", fmt.Sprint(d.Calories)),
		macroCell("Protein", d.Protein),
		macroCell("Carbs", d.Carbs),
		macroCell("Fats", d.Fats),
	)
	b.WriteString(macros + "\n")
	b.WriteString(styleHeading.Render("Sample Meals") + "\n")
	for _, meal := range d.Meals {
		b.WriteString("  " + meal.Name + " " + styleSubtle.Render(meal.Calories) + "\n")
		b.WriteString("    " + meal.Description + "\n")
	}
	return b.String()
}

func macroCell(label, value string) string {
	return styleBox.Render(styleSubtle.Render(label) + "\n" + styleSelected.Render(value))
}

func renderTranscript(msgs []domain.ChatMessage, assistantName string, width int) string {
	var b strings.Builder
	for _, msg := range msgs {
		if msg.Role == domain.RoleUser {
			b.WriteString(styleUser.Render("You: "))
		} else {
			b.WriteString(styleModel.Render(assistantName + ": "))
		}
		b.WriteString(wrap(msg.Text, width) + "\n")
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
