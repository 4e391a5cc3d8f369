package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// doneMsg tells the spinner program the wrapped action finished.
type doneMsg struct{}

type spinModel struct {
	spinner spinner.Model
	label   string
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinModel) View() string {
	return " " + m.spinner.View() + " " + m.label
}

// WithSpinner runs fn while animating label. When the output is not a
// terminal it prints the label once and runs fn inline instead.
func (r *Renderer) WithSpinner(label string, fn func()) {
	if !r.isTTY {
		fmt.Fprintln(r.out, r.styles.DimTxt.Render(label))
		fn()
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(r.styles.Theme.Accent)

	p := tea.NewProgram(
		spinModel{spinner: sp, label: label},
		tea.WithOutput(r.out),
		tea.WithInput(nil),
	)

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
		p.Send(doneMsg{})
	}()

	// If the program fails to start the action still completes below.
	_, _ = p.Run()
	<-done
}
