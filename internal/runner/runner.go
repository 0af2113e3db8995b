// Package runner executes suites of test cases with suite and test hooks, name filters,
// metrics, tracing and result reporting.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/logger"
	"github.com/alexisbeaulieu97/citrine/internal/metrics"
	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/testcase"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
)

// Observer is notified as tests start and finish, in test order.
type Observer interface {
	TestStarted(name string)
	TestFinished(result model.TestResult)
}

// Suite is a named set of test cases sharing variables and hooks. BeforeSuite and
// AfterSuite run once; BeforeTest and AfterTest run around every selected test, inside
// that test's context.
type Suite struct {
	Name        string
	Variables   []action.Variable
	BeforeSuite []action.Action
	AfterSuite  []action.Action
	BeforeTest  []action.Action
	AfterTest   []action.Action
	Tests       []*testcase.TestCase
}

// Runner executes suites. One Runner may run several suites, one at a time.
type Runner struct {
	log       *logger.Logger
	listeners []testcontext.ActionListener
	observers []Observer
	filters   RegexFilters
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	timeout   time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger handed to every test context.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithListeners registers additional action listeners on every test context.
func WithListeners(listeners ...testcontext.ActionListener) Option {
	return func(r *Runner) { r.listeners = append(r.listeners, listeners...) }
}

// WithObservers registers test observers such as a Reporter.
func WithObservers(observers ...Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, observers...) }
}

// WithFilters restricts which tests run.
func WithFilters(filters RegexFilters) Option {
	return func(r *Runner) { r.filters = filters }
}

// WithMetrics records action and test metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
		r.listeners = append(r.listeners, m)
	}
}

// WithTracer opens a span per test and per action.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
		r.listeners = append(r.listeners, NewTracingListener(tracer))
	}
}

// WithTestTimeout bounds the duration of each test, hooks included. Zero means no limit.
func WithTestTimeout(timeout time.Duration) Option {
	return func(r *Runner) { r.timeout = timeout }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("citrine")
	}
	return r
}

// Run executes the suite. A failing before-suite hook fails every selected test without
// running it; the after-suite hook always runs.
func (r *Runner) Run(ctx context.Context, suite *Suite) model.SuiteResult {
	started := time.Now()
	log := r.log.With("suite", suite.Name)
	log.WithFields(map[string]any{"tests": len(suite.Tests)}).Info("suite started")

	result := model.SuiteResult{Name: suite.Name}

	beforeErr := r.runHook(ctx, suite, "before suite", suite.BeforeSuite)
	if beforeErr != nil {
		result.Error = beforeErr
	}

	for _, tcase := range suite.Tests {
		var res model.TestResult
		switch {
		case !r.filters.Match(tcase.Name()):
			res = model.TestResult{Name: tcase.Name(), Status: model.StatusSkipped, Timestamp: time.Now()}
			log.With("test", tcase.Name()).Debug("test skipped by filter")
			r.notifyStarted(tcase.Name())
		case beforeErr != nil:
			r.notifyStarted(tcase.Name())
			res = model.TestResult{
				Name:      tcase.Name(),
				Status:    model.StatusFailed,
				Error:     fmt.Errorf("before suite failed: %w", beforeErr),
				Timestamp: time.Now(),
			}
		default:
			r.notifyStarted(tcase.Name())
			res = r.runTest(ctx, suite, tcase)
		}

		if r.metrics != nil {
			r.metrics.ObserveTest(res)
		}
		for _, o := range r.observers {
			o.TestFinished(res)
		}
		result.Tests = append(result.Tests, res)
	}

	if afterErr := r.runHook(context.WithoutCancel(ctx), suite, "after suite", suite.AfterSuite); afterErr != nil && result.Error == nil {
		result.Error = afterErr
	}

	result.Duration = time.Since(started)
	log.WithFields(map[string]any{
		"passed":  result.Count(model.StatusSuccess),
		"failed":  result.Count(model.StatusFailed),
		"skipped": result.Count(model.StatusSkipped),
	}).Info("suite finished")
	return result
}

func (r *Runner) notifyStarted(name string) {
	for _, o := range r.observers {
		o.TestStarted(name)
	}
}

func (r *Runner) runTest(ctx context.Context, suite *Suite, tcase *testcase.TestCase) model.TestResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "test "+tcase.Name(), trace.WithAttributes(
		attribute.String("citrine.suite", suite.Name),
		attribute.String("citrine.test", tcase.Name()),
	))
	defer span.End()

	started := time.Now()
	tc := r.newContext()

	var res model.TestResult
	err := bindVariables(tc, suite.Variables)
	if err == nil {
		err = action.RunAll(ctx, tc, suite.BeforeTest)
	}
	if err != nil {
		r.log.With("test", tcase.Name()).Error(err, "before test failed")
		res = model.TestResult{
			Name:      tcase.Name(),
			Status:    model.StatusFailed,
			Error:     fmt.Errorf("before test failed: %w", err),
			Timestamp: started,
		}
	} else {
		res = tcase.Run(ctx, tc)
	}

	if afterErr := action.RunAll(context.WithoutCancel(ctx), tc, suite.AfterTest); afterErr != nil {
		r.log.With("test", tcase.Name()).Error(afterErr, "after test failed")
		if res.Error == nil {
			res.Status = model.StatusFailed
			res.Error = fmt.Errorf("after test failed: %w", afterErr)
		}
	}

	res.Duration = time.Since(started)
	res.Trace = tc.Trace()

	if res.Error != nil {
		span.RecordError(res.Error)
		span.SetStatus(codes.Error, res.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return res
}

func (r *Runner) runHook(ctx context.Context, suite *Suite, hook string, actions []action.Action) error {
	if len(actions) == 0 {
		return nil
	}
	tc := r.newContext()
	err := bindVariables(tc, suite.Variables)
	if err == nil {
		err = action.RunAll(ctx, tc, actions)
	}
	if err != nil {
		r.log.With("hook", hook).Error(err, "suite hook failed")
		return fmt.Errorf("%s: %w", hook, err)
	}
	return nil
}

func (r *Runner) newContext() *testcontext.Context {
	return testcontext.New(
		testcontext.WithLogger(r.log),
		testcontext.WithListeners(r.listeners...),
	)
}

func bindVariables(tc *testcontext.Context, variables []action.Variable) error {
	for _, v := range variables {
		value, err := tc.ReplaceDynamicContent(v.Value)
		if err != nil {
			return fmt.Errorf("resolve suite variable %s: %w", v.Name, err)
		}
		tc.SetVariable(v.Name, value)
	}
	return nil
}
