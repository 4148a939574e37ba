package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("33")
	colorAccent  = lipgloss.Color("35")
	colorMuted   = lipgloss.Color("245")
	colorError   = lipgloss.Color("160")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleHeading  = lipgloss.NewStyle().Bold(true)
	styleSubtle   = lipgloss.NewStyle().Foreground(colorMuted)
	styleError    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	styleSelected = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleFocus    = lipgloss.NewStyle().Foreground(colorAccent)
	styleUser     = lipgloss.NewStyle().Foreground(colorPrimary)
	styleModel    = lipgloss.NewStyle().Foreground(colorAccent)
	styleTabOn    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorPrimary)
	styleTabOff   = lipgloss.NewStyle().Foreground(colorMuted)
	styleBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)
