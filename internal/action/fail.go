package action

import (
	"context"
	"errors"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// DefaultFailMessage is reported by a Fail action without a message.
const DefaultFailMessage = "Generated error to interrupt test execution"

// FailConfig configures a Fail action.
type FailConfig struct {
	Meta    `yaml:",inline"`
	Message string `yaml:"message,omitempty"`
}

// Fail always fails with its resolved message.
type Fail struct {
	Base
	message string
}

// NewFail validates cfg and builds a Fail action.
func NewFail(cfg FailConfig) (*Fail, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	msg := cfg.Message
	if msg == "" {
		msg = DefaultFailMessage
	}
	return &Fail{Base: NewBase(cfg.Meta, "fail"), message: msg}, nil
}

// Execute implements Action.
func (f *Fail) Execute(_ context.Context, tc *testcontext.Context) error {
	resolved, err := tc.ReplaceDynamicContent(f.message)
	if err != nil {
		return err
	}
	return errors.New(resolved)
}
