// Package tui is the terminal front end of `fitcoach assess`: the four-step
// wizard, the plan generation spinner, the error screen and the plan
// dashboard with its chat prompt. All state lives in a session.Session.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/session"
	"github.com/ashureev/fitcoach/internal/view"
)

type state int

const (
	stateWizard state = iota
	stateGenerating
	stateFailed
	stateDashboard
)

// Layout constants
const (
	defaultWidth    = 80
	defaultHeight   = 24
	chromeHeight    = 5
	minViewport     = 6
	progressBarSize = 30
	generatingText  = "Crafting your personalized plan... This might take a moment."
)

type planResultMsg struct{ err error }

type chatReplyMsg struct{ err error }

// Model is the bubbletea model driving one session.
type Model struct {
	ctx           context.Context
	sess          *session.Session
	assistantName string

	state  state
	focus  int
	inputs map[string]textinput.Model
	choice map[string]int
	note   string

	spinner      spinner.Model
	chat         textinput.Model
	viewport     viewport.Model
	tab          string
	openDay      string
	nutritionDay string
	sending      int
	width        int
	height       int
}

// New builds the model for a logged-in session. A session that already has
// a plan starts on the dashboard.
func New(ctx context.Context, sess *session.Session, assistantName string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleFocus

	chat := textinput.New()
	chat.Placeholder = "Ask about your plan..."
	chat.CharLimit = 500
	chat.Width = defaultWidth - 4

	m := Model{
		ctx:           ctx,
		sess:          sess,
		assistantName: assistantName,
		inputs:        make(map[string]textinput.Model),
		choice:        make(map[string]int),
		spinner:       s,
		chat:          chat,
		viewport:      viewport.New(defaultWidth, defaultHeight-chromeHeight),
		tab:           view.TabWorkout,
		width:         defaultWidth,
		height:        defaultHeight,
	}

	snap := sess.Snapshot()
	for _, fields := range stepFields {
		for _, f := range fields {
			value := draftValue(snap.Draft, f.key)
			if f.kind == kindOption {
				m.choice[f.key] = optionIndex(f.options, value)
				continue
			}
			in := textinput.New()
			in.Placeholder = f.placeholder
			in.CharLimit = 40
			in.Width = 30
			in.SetValue(value)
			m.inputs[f.key] = in
		}
	}

	if snap.Plan != nil {
		m.enterDashboard(snap.Plan)
	} else {
		m.focusField(0)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, minViewport)
		m.chat.Width = max(msg.Width-4, 10)
		m.refresh(false)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case stateWizard:
			return m.updateWizard(msg)
		case stateFailed:
			return m.updateFailed(msg)
		case stateDashboard:
			return m.updateDashboard(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != stateGenerating && m.sending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == stateDashboard {
			m.refresh(true)
		}
		return m, cmd

	case planResultMsg:
		return m.handlePlanResult(msg.err)

	case chatReplyMsg:
		if m.sending > 0 {
			m.sending--
		}
		if msg.err != nil && !errors.Is(msg.err, session.ErrStale) {
			m.note = msg.err.Error()
		}
		m.refresh(true)
		return m, nil
	}
	return m, nil
}

func (m Model) currentStep() assessment.Step {
	return m.sess.Snapshot().Step
}

func (m *Model) focusField(i int) {
	fields := stepFields[m.currentStep()]
	if len(fields) == 0 {
		m.focus = 0
		return
	}
	if i < 0 {
		i = len(fields) - 1
	}
	if i >= len(fields) {
		i = 0
	}
	m.focus = i
	for j, f := range fields {
		in, ok := m.inputs[f.key]
		if !ok {
			continue
		}
		if j == i {
			in.Focus()
		} else {
			in.Blur()
		}
		m.inputs[f.key] = in
	}
}

func (m Model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.currentStep()
	fields := stepFields[step]

	switch msg.String() {
	case "esc":
		if step == assessment.FirstStep {
			return m, tea.Quit
		}
		if err := m.commit(step); err != nil {
			m.note = err.Error()
			return m, nil
		}
		m.note = ""
		m.sess.PrevStep()
		m.focusField(0)
		return m, nil
	case "enter":
		if step == assessment.LastStep {
			return m.submit()
		}
		if err := m.commit(step); err != nil {
			m.note = err.Error()
			return m, nil
		}
		m.note = ""
		m.sess.NextStep()
		m.focusField(0)
		return m, nil
	case "up", "shift+tab":
		m.focusField(m.focus - 1)
		return m, nil
	case "down", "tab":
		m.focusField(m.focus + 1)
		return m, nil
	}

	if m.focus >= len(fields) {
		return m, nil
	}
	f := fields[m.focus]
	if f.kind == kindOption {
		n := len(f.options)
		switch msg.String() {
		case "left", "h":
			m.choice[f.key] = (m.choice[f.key] + n - 1) % n
		case "right", "l", " ":
			m.choice[f.key] = (m.choice[f.key] + 1) % n
		}
		return m, nil
	}

	in := m.inputs[f.key]
	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	m.inputs[f.key] = in
	return m, cmd
}

// commit applies the answers of step to the draft. Blank inputs are left
// unanswered.
func (m Model) commit(step assessment.Step) error {
	var p assessment.Patch
	for _, f := range stepFields[step] {
		raw := ""
		if f.kind == kindOption {
			raw = f.options[m.choice[f.key]].value
		} else {
			raw = m.inputs[f.key].Value()
			if strings.TrimSpace(raw) == "" {
				continue
			}
		}
		if err := setAnswer(&p, f, raw); err != nil {
			return err
		}
	}
	m.sess.ApplyPatch(p)
	return nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.state = stateGenerating
	m.note = ""
	sess, ctx := m.sess, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return planResultMsg{err: sess.SubmitDraft(ctx)}
	})
}

func (m Model) handlePlanResult(err error) (tea.Model, tea.Cmd) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		m.enterDashboard(m.sess.Snapshot().Plan)
		return m, textinput.Blink
	case errors.As(err, &verr):
		m.sess.ClearError()
		m.state = stateWizard
		names := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			names = append(names, f.Field)
		}
		m.note = "Please complete: " + strings.Join(names, ", ")
	case errors.Is(err, session.ErrStale):
		m.state = stateWizard
	default:
		m.state = stateFailed
	}
	return m, nil
}

func (m Model) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "b":
		m.sess.ClearError()
		m.state = stateWizard
		m.focusField(0)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) enterDashboard(plan *domain.FitnessPlan) {
	m.state = stateDashboard
	m.openDay = view.DefaultOpenDay(plan)
	m.nutritionDay = view.DefaultNutritionDay(plan)
	m.chat.Focus()
	m.refresh(false)
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		if m.tab == view.TabWorkout {
			m.tab = view.TabNutrition
		} else {
			m.tab = view.TabWorkout
		}
		m.refresh(false)
		return m, nil
	case "up":
		m.moveDay(-1)
		return m, nil
	case "down":
		m.moveDay(1)
		return m, nil
	case "ctrl+t":
		if m.tab == view.TabWorkout {
			m.openDay = view.ToggleDay(m.openDay, m.lastOpen())
			m.refresh(false)
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		return m.sendChat()
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// lastOpen is the day ctrl+t toggles: the open day, or the first day when
// everything is collapsed.
func (m Model) lastOpen() string {
	if m.openDay != "" {
		return m.openDay
	}
	return view.DefaultOpenDay(m.sess.Snapshot().Plan)
}

func (m *Model) moveDay(delta int) {
	plan := m.sess.Snapshot().Plan
	if plan == nil {
		return
	}
	var days []string
	current := m.nutritionDay
	if m.tab == view.TabWorkout {
		for _, w := range plan.WorkoutPlan {
			days = append(days, w.Day)
		}
		current = m.lastOpen()
	} else {
		for _, n := range plan.NutritionPlan {
			days = append(days, n.Day)
		}
	}
	if len(days) == 0 {
		return
	}
	idx := 0
	for i, d := range days {
		if d == current {
			idx = i
		}
	}
	idx = (idx + delta + len(days)) % len(days)
	if m.tab == view.TabWorkout {
		m.openDay = days[idx]
	} else {
		m.nutritionDay = days[idx]
	}
	m.refresh(false)
}

func (m Model) sendChat() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.chat.Value())
	if text == "" {
		return m, nil
	}
	m.chat.SetValue("")
	m.note = ""
	m.sending++

	sess, ctx := m.sess, m.ctx
	send := func() tea.Msg {
		_, err := sess.SendChatMessage(ctx, text)
		return chatReplyMsg{err: err}
	}
	if m.sending == 1 {
		return m, tea.Batch(m.spinner.Tick, send)
	}
	return m, send
}

// refresh re-renders the dashboard into the viewport.
func (m *Model) refresh(bottom bool) {
	if m.state != stateDashboard {
		return
	}
	m.viewport.SetContent(m.dashboardContent())
	if bottom {
		m.viewport.GotoBottom()
	}
}
