package container

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// ParallelConfig configures a Parallel container.
type ParallelConfig struct {
	action.Meta
	Actions []action.Action `validate:"dive,required"`
}

// Parallel runs every child in its own goroutine and waits for all of them. A failing
// child does not cancel its siblings.
type Parallel struct {
	base
}

// NewParallel validates cfg and builds a Parallel container.
func NewParallel(cfg ParallelConfig) (*Parallel, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &Parallel{base: newBase(cfg.Meta, "parallel", cfg.Actions)}, nil
}

// Execute implements action.Action. Failures are reported together, in child order, as an
// *errors.AggregateError once every child has finished.
func (p *Parallel) Execute(ctx context.Context, tc *testcontext.Context) error {
	errs := make([]error, len(p.actions))

	var wg sync.WaitGroup
	for i, child := range p.actions {
		wg.Add(1)
		go func(i int, child action.Action) {
			defer wg.Done()
			errs[i] = action.Run(ctx, tc, child)
		}(i, child)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		tc.Logger().WithFields(map[string]any{"action": p.Name(), "failed": len(failed)}).
			Warn("parallel actions failed")
	}
	return citrineerrors.NewAggregateError(p.Name(), failed)
}
