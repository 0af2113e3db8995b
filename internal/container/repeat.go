package container

import (
	"context"
	"strconv"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// DefaultAutoSleep is the pause between failed rounds of a RepeatOnErrorUntilTrue container.
const DefaultAutoSleep = time.Second

// RepeatOnErrorConfig configures a RepeatOnErrorUntilTrue container. A nil AutoSleep
// selects DefaultAutoSleep.
type RepeatOnErrorConfig struct {
	action.Meta
	Actions       []action.Action `validate:"dive,required"`
	IndexName     string          `validate:"omitempty,identifier"`
	Start         *int
	AutoSleep     *time.Duration `validate:"omitempty,min=0"`
	Condition     string
	ConditionFunc ConditionFunc
}

// RepeatOnErrorUntilTrue retries the full child list after a failure until a round
// succeeds or the until-condition becomes true.
type RepeatOnErrorUntilTrue struct {
	base
	indexName string
	start     int
	autoSleep time.Duration
	condition condition
}

// NewRepeatOnErrorUntilTrue validates cfg and builds the container.
func NewRepeatOnErrorUntilTrue(cfg RepeatOnErrorConfig) (*RepeatOnErrorUntilTrue, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	cond, err := newCondition("condition", cfg.Condition, cfg.ConditionFunc)
	if err != nil {
		return nil, err
	}

	sleep := DefaultAutoSleep
	if cfg.AutoSleep != nil {
		sleep = *cfg.AutoSleep
	}
	return &RepeatOnErrorUntilTrue{
		base:      newBase(cfg.Meta, "repeat-on-error", cfg.Actions),
		indexName: indexNameOrDefault(cfg.IndexName),
		start:     startOrDefault(cfg.Start),
		autoSleep: sleep,
		condition: cond,
	}, nil
}

// IndexName returns the loop variable name.
func (r *RepeatOnErrorUntilTrue) IndexName() string {
	return r.indexName
}

// AutoSleep returns the pause between failed rounds.
func (r *RepeatOnErrorUntilTrue) AutoSleep() time.Duration {
	return r.autoSleep
}

// Execute implements action.Action.
//
// The until-condition is checked before every round. A failed round's error is held, the
// index advances and, unless the condition now holds, the container sleeps and starts
// over from the first child. A successful round discards the held error. When the
// condition becomes true while an error is held, the last error is surfaced wrapped in an
// *errors.RepeatExhaustedError.
func (r *RepeatOnErrorUntilTrue) Execute(ctx context.Context, tc *testcontext.Context) error {
	log := tc.Logger().With("action", r.Name())

	var held error
	rounds := 0
	for index := r.start; ; index++ {
		done, err := r.condition.evaluate(r.indexName, index, tc)
		if err != nil {
			return err
		}
		if done {
			break
		}

		tc.SetVariable(r.indexName, strconv.Itoa(index))
		rounds++
		held = action.RunAll(ctx, tc, r.actions)
		if held == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		log.WithFields(map[string]any{"index": index, "error": held.Error()}).Info("round failed, repeating")

		done, err = r.condition.evaluate(r.indexName, index+1, tc)
		if err != nil {
			return err
		}
		if done {
			break
		}
		if err := sleepContext(ctx, r.autoSleep); err != nil {
			return err
		}
	}

	if held != nil {
		return citrineerrors.NewRepeatExhaustedError(r.Name(), rounds, held)
	}
	return nil
}

// RepeatConfig configures a RepeatUntilTrue container.
type RepeatConfig struct {
	action.Meta
	Actions       []action.Action `validate:"dive,required"`
	IndexName     string          `validate:"omitempty,identifier"`
	Start         *int
	Condition     string
	ConditionFunc ConditionFunc
}

// RepeatUntilTrue runs its children at least once and repeats them until the condition,
// evaluated against the next index, holds. Failures end the loop immediately.
type RepeatUntilTrue struct {
	base
	indexName string
	start     int
	condition condition
}

// NewRepeatUntilTrue validates cfg and builds the container.
func NewRepeatUntilTrue(cfg RepeatConfig) (*RepeatUntilTrue, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	cond, err := newCondition("condition", cfg.Condition, cfg.ConditionFunc)
	if err != nil {
		return nil, err
	}
	return &RepeatUntilTrue{
		base:      newBase(cfg.Meta, "repeat", cfg.Actions),
		indexName: indexNameOrDefault(cfg.IndexName),
		start:     startOrDefault(cfg.Start),
		condition: cond,
	}, nil
}

// IndexName returns the loop variable name.
func (r *RepeatUntilTrue) IndexName() string {
	return r.indexName
}

// Execute implements action.Action.
func (r *RepeatUntilTrue) Execute(ctx context.Context, tc *testcontext.Context) error {
	log := tc.Logger().With("action", r.Name())
	for index := r.start; ; {
		tc.SetVariable(r.indexName, strconv.Itoa(index))
		log.WithFields(map[string]any{"index": index}).Debug("repetition")
		if err := action.RunAll(ctx, tc, r.actions); err != nil {
			return err
		}

		index++
		done, err := r.condition.evaluate(r.indexName, index, tc)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
