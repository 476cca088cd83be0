package prompt

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectModel is a single-choice list
type SelectModel struct {
	title     string
	options   []string
	cursor    int
	chosen    int
	cancelled bool
}

func NewSelectModel(title string, options []string) SelectModel {
	return SelectModel{title: title, options: options, chosen: -1}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.chosen = m.cursor
			return m, tea.Quit
		case "esc", "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(fmt.Sprintf("> %s", opt)) + "\n")
			continue
		}
		b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", opt)) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to cancel") + "\n")
	return b.String()
}

// Chosen returns the selected index, or -1 when nothing was selected
func (m SelectModel) Chosen() int {
	return m.chosen
}

func (m SelectModel) Cancelled() bool {
	return m.cancelled
}
