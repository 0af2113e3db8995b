package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Finished  bool
	Cancelled bool
}

// Summary renders a textual suite summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary; it is empty for a suite without tests.
func (s Summary) View() string {
	if s.data.Total == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("Tests: %d passed, %d failed, %d skipped of %d",
		s.data.Passed, s.data.Failed, s.data.Skipped, s.data.Total)}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run cancelled")
	case s.data.Finished && s.data.Failed > 0:
		lines = append(lines, "Suite failed")
	case s.data.Finished:
		lines = append(lines, "Suite passed")
	}
	return strings.Join(lines, "\n")
}
