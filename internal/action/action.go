// Package action implements the leaf test actions and the Run helper every container uses
// to execute its children.
package action

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// Action is one executable step of a test. Implementations are immutable after construction
// and may be executed concurrently against the same context.
type Action interface {
	Name() string
	Disabled() bool
	Execute(ctx context.Context, tc *testcontext.Context) error
}

// Meta carries the settings shared by every action.
type Meta struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Disabled    bool   `yaml:"disabled,omitempty"`
}

// Base implements the descriptive half of Action.
type Base struct {
	name        string
	description string
	disabled    bool
}

// NewBase builds a Base, falling back to defaultName when meta carries no name.
func NewBase(meta Meta, defaultName string) Base {
	name := meta.Name
	if name == "" {
		name = defaultName
	}
	return Base{name: name, description: meta.Description, disabled: meta.Disabled}
}

// Name implements Action.
func (b Base) Name() string {
	return b.name
}

// Description returns the free-form description.
func (b Base) Description() string {
	return b.description
}

// Disabled implements Action.
func (b Base) Disabled() bool {
	return b.disabled
}

type depthKey struct{}

// Depth reports the nesting level of the action being run under ctx.
func Depth(ctx context.Context) int {
	if depth, ok := ctx.Value(depthKey{}).(int); ok {
		return depth
	}
	return 0
}

// Run executes a, recording it in the context trace and notifying the registered listeners.
// Disabled actions are recorded as skipped. Failures that are not already execution errors
// are wrapped with the action name.
func Run(ctx context.Context, tc *testcontext.Context, a Action) error {
	depth := Depth(ctx)
	name := a.Name()

	if a.Disabled() {
		tc.SkipAction(name, depth)
		tc.Logger().With("action", name).Debug("skipping disabled action")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, listener := range tc.Listeners() {
		ctx = listener.ActionStarted(ctx, name)
	}

	index := tc.StartAction(name, depth)
	start := time.Now()
	err := a.Execute(context.WithValue(ctx, depthKey{}, depth+1), tc)
	duration := time.Since(start)

	if err != nil {
		if _, ok := err.(*citrineerrors.ExecutionError); !ok {
			err = citrineerrors.NewExecutionError(name, err)
		}
	}

	tc.FinishAction(index, err, duration)
	for _, listener := range tc.Listeners() {
		listener.ActionFinished(ctx, name, err, duration)
	}
	return err
}

// RunAll runs actions in order and stops at the first failure.
func RunAll(ctx context.Context, tc *testcontext.Context, actions []Action) error {
	for _, a := range actions {
		if err := Run(ctx, tc, a); err != nil {
			return err
		}
	}
	return nil
}
