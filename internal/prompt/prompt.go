package prompt

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves a prompt with esc or ctrl+c
var ErrCancelled = errors.New("prompt cancelled")

// Prompter runs interactive prompts on the given terminal streams
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompter) run(m tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// Select asks the user to pick one option and returns its index
func (p Prompter) Select(title string, options []string) (int, error) {
	final, err := p.run(NewSelectModel(title, options))
	if err != nil {
		return -1, err
	}
	m := final.(SelectModel)
	if m.Cancelled() || m.Chosen() < 0 {
		return -1, ErrCancelled
	}
	return m.Chosen(), nil
}

// Input asks for a line of text
func (p Prompter) Input(title, placeholder string, required bool) (string, error) {
	final, err := p.run(NewInputModel(title, placeholder, required))
	if err != nil {
		return "", err
	}
	m := final.(InputModel)
	if m.Cancelled() {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

// Confirm asks a yes/no question; the default answer is no
func (p Prompter) Confirm(question string) (bool, error) {
	final, err := p.run(NewConfirmModel(question))
	if err != nil {
		return false, err
	}
	m := final.(ConfirmModel)
	if m.Cancelled() {
		return false, ErrCancelled
	}
	return m.Answer(), nil
}
