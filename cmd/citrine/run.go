package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/citrine/internal/config"
	"github.com/alexisbeaulieu97/citrine/internal/loader"
	"github.com/alexisbeaulieu97/citrine/internal/logger"
	"github.com/alexisbeaulieu97/citrine/internal/metrics"
	"github.com/alexisbeaulieu97/citrine/internal/runner"
	"github.com/alexisbeaulieu97/citrine/internal/tui"
)

// errSuiteFailed makes the process exit non-zero after the report has been printed.
var errSuiteFailed = errors.New("suite failed")

type runOptions struct {
	ConfigPath     string
	Verbose        bool
	NoColor        bool
	NonInteractive bool
	MetricsPath    string
	Filters        runner.RegexFilters

	Out    io.Writer
	Logs   io.Writer
	Signal bool
}

var runCmdRunner = runSuite

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a test suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			opts.Out = cmd.OutOrStdout()
			opts.Logs = cmd.ErrOrStderr()
			opts.Signal = true

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			return runCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to suite file")
	cmd.Flags().Var(&opts.Filters.MustMatch, "run", "Only run tests whose name matches this regex (repeatable)")
	cmd.Flags().Var(&opts.Filters.MustNotMatch, "skip", "Skip tests whose name matches this regex (repeatable)")
	cmd.Flags().StringVar(&opts.MetricsPath, "metrics-file", "", "Write Prometheus metrics in text format to this file after the run")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runSuite(ctx context.Context, opts runOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.Signal {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	loaded, err := loader.Load(cfg)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	logs := opts.Logs
	interactive := !opts.NonInteractive
	if interactive && !opts.Verbose {
		// The dashboard owns the terminal.
		logs = io.Discard
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: logs})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	reporter := runner.NewReporter(opts.Out, opts.NoColor, opts.Verbose)
	runnerOpts := []runner.Option{
		runner.WithLogger(log),
		runner.WithFilters(opts.Filters),
		runner.WithMetrics(metrics.New(registry)),
		runner.WithTracer(otel.Tracer("github.com/alexisbeaulieu97/citrine")),
		runner.WithTestTimeout(loaded.TestTimeout),
	}

	if description := opts.Filters.Describe(); description != "" {
		log.Info(description)
	}

	var program *tea.Program
	var programErr error
	done := make(chan struct{})
	if interactive {
		program = tea.NewProgram(tui.NewModel(loaded.Suite.Name, cfg.TestNames(), false))
		runnerOpts = append(runnerOpts, runner.WithObservers(tui.NewObserver(program.Send)))
		go func() {
			defer close(done)
			final, err := program.Run()
			programErr = err
			// Ctrl+C inside the dashboard stops the remaining tests.
			if m, ok := final.(tui.Model); ok && m.Cancelled() {
				cancel()
			}
		}()
	} else {
		runnerOpts = append(runnerOpts, runner.WithObservers(reporter))
	}

	result := runner.New(runnerOpts...).Run(ctx, loaded.Suite)

	if interactive {
		program.Send(tui.SuiteCompleteMsg{Result: result})
		<-done
		if programErr != nil {
			return programErr
		}
		for _, res := range result.Tests {
			if res.Failed() {
				reporter.TestFinished(res)
			}
		}
	}
	reporter.Summary(result)

	if opts.MetricsPath != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsPath, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if !result.Success() {
		return errSuiteFailed
	}
	return nil
}
