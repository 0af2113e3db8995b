package action

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// EchoConfig configures an Echo action.
type EchoConfig struct {
	Meta    `yaml:",inline"`
	Message string `yaml:"message,omitempty"`
}

// Echo writes a resolved message to the context logger.
type Echo struct {
	Base
	message string
}

// NewEcho validates cfg and builds an Echo action.
func NewEcho(cfg EchoConfig) (*Echo, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &Echo{Base: NewBase(cfg.Meta, "echo"), message: cfg.Message}, nil
}

// Message returns the unresolved message template.
func (e *Echo) Message() string {
	return e.message
}

// Execute implements Action. Without a message the current date is logged.
func (e *Echo) Execute(_ context.Context, tc *testcontext.Context) error {
	log := tc.Logger().With("action", e.Name())
	if e.message == "" {
		log.Info("Citrine test " + time.Now().Format(time.RFC1123))
		return nil
	}

	resolved, err := tc.ReplaceDynamicContent(e.message)
	if err != nil {
		return err
	}
	log.Info(resolved)
	return nil
}
