// Package tui renders live suite progress with Bubbletea when citrine runs in a terminal.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/citrine/internal/model"
)

// TestStartMsg indicates a test has started.
type TestStartMsg struct {
	Name string
	Time time.Time
}

// TestCompleteMsg reports that a test has finished, been skipped or failed.
type TestCompleteMsg struct {
	Result model.TestResult
}

// SuiteCompleteMsg reports the end of the suite and quits the program.
type SuiteCompleteMsg struct {
	Result model.SuiteResult
}

type tickMsg struct{}

// Model contains the Bubbletea state for a suite run.
type Model struct {
	suite          string
	tests          map[string]model.TestResult
	order          []string
	total          int
	completed      int
	suiteErr       error
	finished       bool
	cancelled      bool
	nonInteractive bool
}

// NewModel tracks the named tests of a suite in the given order.
func NewModel(suite string, tests []string, nonInteractive bool) Model {
	m := Model{
		suite:          suite,
		tests:          make(map[string]model.TestResult),
		nonInteractive: nonInteractive,
	}
	for _, name := range tests {
		m.ensureTest(name)
	}
	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalTests returns the number of tracked tests.
func (m Model) TotalTests() int {
	return m.total
}

// CompletedTests returns the number of finished tests.
func (m Model) CompletedTests() int {
	return m.completed
}

// IsFinished reports whether the suite has completed or the run was cancelled.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) ensureTest(name string) {
	if name == "" {
		return
	}
	if _, exists := m.tests[name]; !exists {
		m.tests[name] = model.TestResult{Name: name, Status: model.StatusCreated}
		m.order = append(m.order, name)
		m.total++
	}
}

func (m Model) count(status model.Status) int {
	n := 0
	for _, r := range m.tests {
		if r.Status == status {
			n++
		}
	}
	return n
}
