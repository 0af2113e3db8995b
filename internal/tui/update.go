package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/citrine/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case TestStartMsg:
		m.ensureTest(msg.Name)
		res := m.tests[msg.Name]
		res.Status = model.StatusRunning
		m.tests[msg.Name] = res
		return m, nil
	case TestCompleteMsg:
		name := msg.Result.Name
		if name == "" {
			return m, nil
		}
		m.ensureTest(name)
		previous := m.tests[name].Status
		m.tests[name] = msg.Result
		if previous == model.StatusCreated || previous == model.StatusRunning {
			m.completed++
		}
		return m, nil
	case SuiteCompleteMsg:
		m.suiteErr = msg.Result.Error
		m.finished = true
		if m.nonInteractive {
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
