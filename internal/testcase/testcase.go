// Package testcase runs a single test: variables, the root action sequence and the
// finally block, against one execution context.
package testcase

import (
	"context"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// Config describes a test case. Variables are resolved in order before the first action.
type Config struct {
	Name        string `validate:"required"`
	Description string
	Variables   []action.Variable `validate:"dive"`
	Actions     []action.Action   `validate:"dive,required"`
	Finally     []action.Action   `validate:"dive,required"`
}

// TestCase moves through created, running and finally success or failed. A test case
// runs once; running it again starts a new lifecycle.
type TestCase struct {
	name        string
	description string
	variables   []action.Variable
	actions     []action.Action
	finally     []action.Action

	mu     sync.Mutex
	status model.Status
}

// New validates cfg and builds a TestCase.
func New(cfg Config) (*TestCase, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &TestCase{
		name:        cfg.Name,
		description: cfg.Description,
		variables:   append([]action.Variable(nil), cfg.Variables...),
		actions:     append([]action.Action(nil), cfg.Actions...),
		finally:     append([]action.Action(nil), cfg.Finally...),
		status:      model.StatusCreated,
	}, nil
}

// Name returns the test name.
func (t *TestCase) Name() string {
	return t.name
}

// Description returns the free-form description.
func (t *TestCase) Description() string {
	return t.description
}

// Actions returns the root actions.
func (t *TestCase) Actions() []action.Action {
	return append([]action.Action(nil), t.actions...)
}

// ActionCount returns the number of root actions.
func (t *TestCase) ActionCount() int {
	return len(t.actions)
}

// Finally returns the actions that always run after the root actions.
func (t *TestCase) Finally() []action.Action {
	return append([]action.Action(nil), t.finally...)
}

// Status returns the current lifecycle state.
func (t *TestCase) Status() model.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TestCase) setStatus(status model.Status) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Run executes the test against tc. The root actions run as a sequence and the first
// failure stops them. The finally block always runs, even after cancellation; its
// failures fail the test only when the root actions passed.
func (t *TestCase) Run(ctx context.Context, tc *testcontext.Context) model.TestResult {
	started := time.Now()
	t.setStatus(model.StatusRunning)

	log := tc.Logger().With("test", t.name)
	log.Info("test started")

	tc.SetVariable(testcontext.TestNameVariable, t.name)
	err := t.bindVariables(tc)
	if err == nil {
		err = action.RunAll(ctx, tc, t.actions)
	}

	if finallyErr := t.runFinally(context.WithoutCancel(ctx), tc); finallyErr != nil {
		log.Error(finallyErr, "finally block failed")
		if err == nil {
			err = finallyErr
		}
	}

	result := model.TestResult{
		Name:      t.name,
		Status:    model.StatusSuccess,
		Error:     err,
		Duration:  time.Since(started),
		Timestamp: started,
		Trace:     tc.Trace(),
	}
	if err != nil {
		result.Status = model.StatusFailed
		log.Error(err, "test failed")
	} else {
		log.Info("test succeeded")
	}
	t.setStatus(result.Status)
	return result
}

func (t *TestCase) bindVariables(tc *testcontext.Context) error {
	for _, v := range t.variables {
		value, err := tc.ReplaceDynamicContent(v.Value)
		if err != nil {
			return err
		}
		tc.SetVariable(v.Name, value)
	}
	return nil
}

// runFinally runs every finally action and returns the first failure.
func (t *TestCase) runFinally(ctx context.Context, tc *testcontext.Context) error {
	var first error
	for _, a := range t.finally {
		if err := action.Run(ctx, tc, a); err != nil && first == nil {
			first = err
		}
	}
	return first
}
