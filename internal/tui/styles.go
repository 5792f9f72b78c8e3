package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// same palette as the plain CLI output
var categoryColors = map[string]lipgloss.Color{
	"Produce": lipgloss.Color("5"),
	"Dairy":   lipgloss.Color("4"),
	"Protein": lipgloss.Color("3"),
	"Pantry":  lipgloss.Color("208"),
	"Frozen":  lipgloss.Color("8"),
}

func categoryStyle(name string) lipgloss.Style {
	c, ok := categoryColors[name]
	if !ok {
		c = lipgloss.Color("12")
	}
	return tabStyle.Foreground(c)
}

func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}
