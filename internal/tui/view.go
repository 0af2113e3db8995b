package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("Citrine • %s", m.title())))

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewTestList(m.order, m.tests).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Tests"), renderTestEntries(entries))
	}

	if m.suiteErr != nil {
		sections = append(sections, components.NewAlert("Suite hook failed", m.suiteErr.Error(), components.AlertError).View())
	}
	if m.cancelled {
		sections = append(sections, components.NewAlert("", "Cancelled, waiting for the running test to stop", components.AlertInfo).View())
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Passed:    m.count(model.StatusSuccess),
		Failed:    m.count(model.StatusFailed),
		Skipped:   m.count(model.StatusSkipped),
		Finished:  m.finished,
		Cancelled: m.cancelled,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTestEntries(entries []components.TestEntry) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		line := fmt.Sprintf(" %s %s", StatusIcon(res.Status), entry.Name)
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
		if res.Error != nil {
			lines = append(lines, errorStyle.Render(res.Error.Error()))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) title() string {
	if strings.TrimSpace(m.suite) != "" {
		return m.suite
	}
	return "Suite"
}

// StatusIcon returns the glyph representing a test status.
func StatusIcon(status model.Status) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
