package prompt

import "github.com/charmbracelet/lipgloss"

// Terminal palette
var Colours = struct {
	Red, Green, Blue, Subtext string
}{
	Red:     "#f38ba8",
	Green:   "#a6e3a1",
	Blue:    "#89b4fa",
	Subtext: "#a6adc8",
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Blue)).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Green)).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Subtext)).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Red))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Colours.Green))
)

// Red renders s in the error colour
func Red(s string) string {
	return errorStyle.Render(s)
}

// Green renders s in the success colour
func Green(s string) string {
	return successStyle.Render(s)
}
