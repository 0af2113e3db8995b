package container

import (
	"context"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// SequenceConfig configures a Sequence container.
type SequenceConfig struct {
	action.Meta
	Actions []action.Action `validate:"dive,required"`
}

// Sequence runs its children in order. The first failure aborts the sequence.
type Sequence struct {
	base
}

// NewSequence validates cfg and builds a Sequence.
func NewSequence(cfg SequenceConfig) (*Sequence, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &Sequence{base: newBase(cfg.Meta, "sequential", cfg.Actions)}, nil
}

// Execute implements action.Action.
func (s *Sequence) Execute(ctx context.Context, tc *testcontext.Context) error {
	return action.RunAll(ctx, tc, s.actions)
}
