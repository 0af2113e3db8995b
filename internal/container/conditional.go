package container

import (
	"context"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// ConditionalConfig configures a Conditional container. ConditionFunc is called with
// index 0 and takes precedence over Expression.
type ConditionalConfig struct {
	action.Meta
	Actions       []action.Action `validate:"dive,required"`
	Expression    string
	ConditionFunc ConditionFunc
}

// Conditional runs its children as a sequence when the expression holds at execution time,
// otherwise it succeeds without running them.
type Conditional struct {
	base
	condition condition
}

// NewConditional validates cfg and builds a Conditional container.
func NewConditional(cfg ConditionalConfig) (*Conditional, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	cond, err := newCondition("expression", cfg.Expression, cfg.ConditionFunc)
	if err != nil {
		return nil, err
	}
	return &Conditional{base: newBase(cfg.Meta, "conditional", cfg.Actions), condition: cond}, nil
}

// Expression returns the condition as text.
func (c *Conditional) Expression() string {
	return c.condition.String()
}

// Execute implements action.Action.
func (c *Conditional) Execute(ctx context.Context, tc *testcontext.Context) error {
	ok, err := c.condition.evaluate("", 0, tc)
	if err != nil {
		return err
	}
	if !ok {
		tc.Logger().WithFields(map[string]any{"action": c.Name(), "expression": c.condition.String()}).
			Debug("condition not satisfied, skipping nested actions")
		return nil
	}
	return action.RunAll(ctx, tc, c.actions)
}
