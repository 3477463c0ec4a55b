package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DoneMsg reports that the awaited operation has returned.
type DoneMsg struct {
	Output string
	Err    error
}

// Model shows a spinner and elapsed time while one blocking operation runs.
type Model struct {
	label     string
	spinner   spinner.Model
	startedAt time.Time
	now       time.Time

	output    string
	err       error
	finished  bool
	cancelled bool
}

// NewModel builds a spinner model for the operation described by label.
func NewModel(label string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	now := time.Now()
	return Model{label: label, spinner: s, startedAt: now, now: now}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// IsFinished reports whether the operation returned.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the wait.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Result returns the operation's output and error once finished.
func (m Model) Result() (string, error) {
	return m.output, m.err
}
