package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/citrine/internal/model"
)

// Observer forwards runner notifications to a Bubbletea program.
type Observer struct {
	send func(tea.Msg)
}

// NewObserver creates an Observer that delivers messages through send, typically
// (*tea.Program).Send.
func NewObserver(send func(tea.Msg)) *Observer {
	return &Observer{send: send}
}

// TestStarted forwards a TestStartMsg.
func (o *Observer) TestStarted(name string) {
	o.send(TestStartMsg{Name: name, Time: time.Now()})
}

// TestFinished forwards a TestCompleteMsg.
func (o *Observer) TestFinished(result model.TestResult) {
	o.send(TestCompleteMsg{Result: result})
}
