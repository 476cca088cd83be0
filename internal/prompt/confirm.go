package prompt

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no question answered with y or n
type ConfirmModel struct {
	question  string
	answer    bool
	done      bool
	cancelled bool
}

func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{question: question}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y":
			m.answer, m.done = true, true
			return m, tea.Quit
		case "n", "enter":
			m.answer, m.done = false, true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return titleStyle.Render(m.question) + " " + helpStyle.Render("(y/N)") + "\n"
}

func (m ConfirmModel) Answer() bool {
	return m.answer
}

func (m ConfirmModel) Cancelled() bool {
	return m.cancelled
}
