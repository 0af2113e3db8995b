package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AlertVariant selects the colour of an alert.
type AlertVariant int

const (
	AlertInfo AlertVariant = iota
	AlertError
)

// Alert is a bordered message box.
type Alert struct {
	title   string
	message string
	variant AlertVariant
}

// NewAlert creates an alert; an empty title renders the message alone.
func NewAlert(title, message string, variant AlertVariant) Alert {
	return Alert{title: title, message: message, variant: variant}
}

// View renders the alert.
func (a Alert) View() string {
	color := lipgloss.Color("39")
	if a.variant == AlertError {
		color = lipgloss.Color("196")
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)

	var content []string
	if a.title != "" {
		content = append(content, lipgloss.NewStyle().Bold(true).Foreground(color).Render(a.title))
	}
	if a.message != "" {
		content = append(content, a.message)
	}
	return style.Render(strings.Join(content, "\n"))
}
