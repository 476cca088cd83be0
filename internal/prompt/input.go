package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputModel asks for one line of text. An empty answer is refused when required.
type InputModel struct {
	title     string
	input     textinput.Model
	required  bool
	done      bool
	cancelled bool
	err       string
}

func NewInputModel(title, placeholder string, required bool) InputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	return InputModel{title: title, input: ti, required: required}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if m.required && m.Value() == "" {
				m.err = "A value is required"
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = ""
	return m, cmd
}

func (m InputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	view := titleStyle.Render(m.title) + "\n\n" + m.input.View() + "\n"
	if m.err != "" {
		view += "\n" + Red(m.err) + "\n"
	}
	return view
}

// Value returns the trimmed answer
func (m InputModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m InputModel) Cancelled() bool {
	return m.cancelled
}
