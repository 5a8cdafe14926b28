package picker

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent     = lipgloss.Color("#ef233c")
	colorBackground = lipgloss.Color("#2b2d42")
	colorForeground = lipgloss.Color("#edf2f4")
	colorMuted      = lipgloss.Color("#8d99ae")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorForeground).
			Background(colorAccent).
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorMuted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorBackground).
		Background(colorAccent).
		Bold(true)
	return s
}
