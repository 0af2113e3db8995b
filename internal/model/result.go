package model

import (
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
)

// Status is the lifecycle state of a test case.
type Status string

const (
	// StatusCreated indicates a test case has not started yet.
	StatusCreated Status = "created"
	// StatusRunning indicates a test case is executing.
	StatusRunning Status = "running"
	// StatusSuccess marks a passed test case.
	StatusSuccess Status = "success"
	// StatusFailed marks a failed test case.
	StatusFailed Status = "failed"
	// StatusSkipped indicates the runner filtered the test case out.
	StatusSkipped Status = "skipped"
)

// TestResult captures the outcome of a single test case.
type TestResult struct {
	Name      string
	Status    Status
	Error     error
	Duration  time.Duration
	Timestamp time.Time
	// Trace lists every action that started, in start order, including nested ones.
	Trace []testcontext.ActionRecord
}

// Failed reports whether the test case failed.
func (r TestResult) Failed() bool {
	return r.Status == StatusFailed
}

// SuiteResult aggregates the results of one suite run.
type SuiteResult struct {
	Name     string
	Tests    []TestResult
	Duration time.Duration
	// Error holds a before- or after-suite failure.
	Error error
}

// Count returns how many test results have the given status.
func (s SuiteResult) Count(status Status) int {
	n := 0
	for _, r := range s.Tests {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Success reports whether the suite hooks passed and no test failed.
func (s SuiteResult) Success() bool {
	return s.Error == nil && s.Count(StatusFailed) == 0
}
