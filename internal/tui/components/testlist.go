package components

import (
	"github.com/alexisbeaulieu97/citrine/internal/model"
)

// TestEntry is one row of the test list.
type TestEntry struct {
	Name   string
	Result model.TestResult
}

// TestList holds the tests of a suite in execution order.
type TestList struct {
	entries []TestEntry
}

// NewTestList builds the list from the test order and the latest known results.
func NewTestList(order []string, tests map[string]model.TestResult) TestList {
	entries := make([]TestEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, TestEntry{Name: name, Result: tests[name]})
	}
	return TestList{entries: entries}
}

// Entries returns a copy of the ordered entries.
func (l TestList) Entries() []TestEntry {
	return append([]TestEntry(nil), l.entries...)
}
