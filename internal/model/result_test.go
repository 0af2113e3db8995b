package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuiteResultCounts(t *testing.T) {
	t.Parallel()

	suite := SuiteResult{Tests: []TestResult{
		{Name: "a", Status: StatusSuccess},
		{Name: "b", Status: StatusFailed, Error: errors.New("boom")},
		{Name: "c", Status: StatusSkipped},
		{Name: "d", Status: StatusSuccess},
	}}

	require.Equal(t, 2, suite.Count(StatusSuccess))
	require.Equal(t, 1, suite.Count(StatusFailed))
	require.Equal(t, 1, suite.Count(StatusSkipped))
	require.False(t, suite.Success())
	require.True(t, suite.Tests[1].Failed())
}

func TestSuiteResultHookFailure(t *testing.T) {
	t.Parallel()

	suite := SuiteResult{Tests: []TestResult{{Name: "a", Status: StatusSuccess}}}
	require.True(t, suite.Success())

	suite.Error = errors.New("before suite failed")
	require.False(t, suite.Success())
}
