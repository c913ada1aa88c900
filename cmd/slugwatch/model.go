package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/slugshare/internal/slug"
	"github.com/atinyakov/slugshare/internal/slugcheck"
)

// stateMsg carries a checker transition into the program.
type stateMsg slugcheck.State

type candidateSetter interface {
	Set(candidate, exclude string)
}

var (
	checkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	invalidStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	takenStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

type model struct {
	input   textinput.Model
	checker candidateSetter
	exclude string
	state   slugcheck.State
}

func newModel(checker candidateSetter, exclude string, minLength int) model {
	ti := textinput.New()
	ti.Placeholder = "my-document"
	ti.CharLimit = slug.MaxLength
	ti.Prompt = "slug> "
	ti.SetValue(exclude)
	ti.Focus()

	return model{
		input:   ti,
		checker: checker,
		exclude: exclude,
		state:   slugcheck.NewState(minLength),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		}

	case stateMsg:
		st := slugcheck.State(msg)
		// Transitions can arrive after a newer keystroke was typed.
		if st.Candidate == m.input.Value() {
			m.state = st
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if after := m.input.Value(); after != before {
		m.checker.Set(after, m.exclude)
	}
	return m, cmd
}

func renderStatus(s slugcheck.State) string {
	switch s.Status() {
	case slugcheck.StatusChecking:
		return checkingStyle.Render("checking…")
	case slugcheck.StatusInvalid:
		return invalidStyle.Render("invalid format: use " + slug.Alphabet)
	case slugcheck.StatusAvailable:
		return availableStyle.Render("available")
	case slugcheck.StatusTaken:
		return takenStyle.Render("taken")
	default:
		return ""
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n%s\n\n%s\n",
		m.input.View(),
		renderStatus(m.state),
		hintStyle.Render("enter/esc to quit"),
	)
}
