package container

import (
	"context"
	"strconv"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// IterateConfig configures an Iterate container. Start defaults to 1 and Step to 1.
// ConditionFunc takes precedence over Condition.
type IterateConfig struct {
	action.Meta
	Actions       []action.Action `validate:"dive,required"`
	IndexName     string          `validate:"omitempty,identifier"`
	Start         *int
	Step          int
	Condition     string
	ConditionFunc ConditionFunc
}

// Iterate runs its children while the condition holds. The condition is checked before
// every round and the index is bound into the context before the children run.
type Iterate struct {
	base
	indexName string
	start     int
	step      int
	condition condition
}

// NewIterate validates cfg and builds an Iterate container.
func NewIterate(cfg IterateConfig) (*Iterate, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	cond, err := newCondition("condition", cfg.Condition, cfg.ConditionFunc)
	if err != nil {
		return nil, err
	}

	it := &Iterate{
		base:      newBase(cfg.Meta, "iterate", cfg.Actions),
		indexName: indexNameOrDefault(cfg.IndexName),
		start:     startOrDefault(cfg.Start),
		step:      cfg.Step,
		condition: cond,
	}
	if it.step == 0 {
		it.step = 1
	}
	return it, nil
}

// IndexName returns the loop variable name.
func (it *Iterate) IndexName() string {
	return it.indexName
}

// Condition returns the loop condition as text.
func (it *Iterate) Condition() string {
	return it.condition.String()
}

// Execute implements action.Action. Child failures end the loop immediately.
func (it *Iterate) Execute(ctx context.Context, tc *testcontext.Context) error {
	log := tc.Logger().With("action", it.Name())
	for index := it.start; ; index += it.step {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := it.condition.evaluate(it.indexName, index, tc)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		tc.SetVariable(it.indexName, strconv.Itoa(index))
		log.WithFields(map[string]any{"index": index}).Debug("iteration")
		if err := action.RunAll(ctx, tc, it.actions); err != nil {
			return err
		}
	}
}

func indexNameOrDefault(name string) string {
	if name == "" {
		return DefaultIndexName
	}
	return name
}

func startOrDefault(start *int) int {
	if start == nil {
		return 1
	}
	return *start
}
