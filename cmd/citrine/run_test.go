package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/runner"
)

func runOpts(t *testing.T, suite string, out, logs *bytes.Buffer) runOptions {
	t.Helper()
	return runOptions{
		ConfigPath:     writeSuite(t, suite),
		NoColor:        true,
		NonInteractive: true,
		Out:            out,
		Logs:           logs,
	}
}

func TestRunSuitePasses(t *testing.T) {
	t.Parallel()

	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	opts := runOpts(t, passingSuite, out, logs)
	opts.MetricsPath = filepath.Join(t.TempDir(), "metrics.prom")

	require.NoError(t, runSuite(context.Background(), opts))
	require.Contains(t, out.String(), "PASS round-trip")
	require.Contains(t, out.String(), "PASS echo-only")
	require.Contains(t, out.String(), "SUCCESS cli-suite: 2 tests, 2 passed, 0 failed, 0 skipped")
	require.Contains(t, logs.String(), "suite finished")

	metrics, err := os.ReadFile(opts.MetricsPath)
	require.NoError(t, err)
	require.Contains(t, string(metrics), `citrine_tests_total{status="success"} 2`)
}

func TestRunSuiteFailureReturnsSentinel(t *testing.T) {
	t.Parallel()

	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	err := runSuite(context.Background(), runOpts(t, failingSuite, out, logs))

	require.ErrorIs(t, err, errSuiteFailed)
	require.Contains(t, out.String(), "FAIL broken")
	require.Contains(t, out.String(), "stop here")
	require.Contains(t, out.String(), "FAILED failing-suite")
}

func TestRunSuiteAppliesFilters(t *testing.T) {
	t.Parallel()

	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	opts := runOpts(t, passingSuite, out, logs)
	require.NoError(t, opts.Filters.MustNotMatch.Set("^round"))

	require.NoError(t, runSuite(context.Background(), opts))
	require.Contains(t, out.String(), "SKIP round-trip")
	require.Contains(t, out.String(), "1 passed, 0 failed, 1 skipped")
}

func TestRunCommandWiresFlags(t *testing.T) {
	original := runCmdRunner
	t.Cleanup(func() { runCmdRunner = original })

	var captured runOptions
	runCmdRunner = func(_ context.Context, opts runOptions) error {
		captured = opts
		return nil
	}

	path := writeSuite(t, passingSuite)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"run", "-c", path, "--run", "^echo", "--skip", "slow", "--no-color", "-v"})

	require.NoError(t, root.Execute())
	require.Equal(t, path, captured.ConfigPath)
	require.True(t, captured.NoColor)
	require.True(t, captured.Verbose)

	filters := runner.RegexFilters{}
	require.NoError(t, filters.MustMatch.Set("^echo"))
	require.NoError(t, filters.MustNotMatch.Set("slow"))
	require.Equal(t, filters.Describe(), captured.Filters.Describe())
}
