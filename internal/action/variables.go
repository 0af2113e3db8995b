package action

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
)

// Variable is a named value template.
type Variable struct {
	Name  string `yaml:"name" validate:"required"`
	Value string `yaml:"value"`
}

// CreateVariablesConfig configures a CreateVariables action.
type CreateVariablesConfig struct {
	Meta      `yaml:",inline"`
	Variables []Variable `yaml:"variables" validate:"required,min=1,dive"`
}

// CreateVariables binds variables in declaration order, so later values may reference
// earlier ones.
type CreateVariables struct {
	Base
	variables []Variable
}

// NewCreateVariables validates cfg and builds a CreateVariables action.
func NewCreateVariables(cfg CreateVariablesConfig) (*CreateVariables, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &CreateVariables{
		Base:      NewBase(cfg.Meta, "create-variables"),
		variables: append([]Variable(nil), cfg.Variables...),
	}, nil
}

// Execute implements Action.
func (c *CreateVariables) Execute(_ context.Context, tc *testcontext.Context) error {
	log := tc.Logger().With("action", c.Name())
	for _, v := range c.variables {
		value, err := tc.ReplaceDynamicContent(v.Value)
		if err != nil {
			return err
		}
		tc.SetVariable(v.Name, value)
		log.WithFields(map[string]any{"variable": v.Name, "value": value}).Debug("created variable")
	}
	return nil
}

// TraceVariablesConfig configures a TraceVariables action. Without names every variable
// is traced.
type TraceVariablesConfig struct {
	Meta      `yaml:",inline"`
	Variables []string `yaml:"variables,omitempty"`
}

// TraceVariables logs variable values.
type TraceVariables struct {
	Base
	names []string
}

// NewTraceVariables validates cfg and builds a TraceVariables action.
func NewTraceVariables(cfg TraceVariablesConfig) (*TraceVariables, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &TraceVariables{Base: NewBase(cfg.Meta, "trace-variables"), names: append([]string(nil), cfg.Variables...)}, nil
}

// Execute implements Action. Unknown names fail the action.
func (t *TraceVariables) Execute(_ context.Context, tc *testcontext.Context) error {
	names := t.names
	if len(names) == 0 {
		names = tc.VariableNames()
	}

	log := tc.Logger().With("action", t.Name())
	for _, name := range names {
		value, err := tc.Variable(name)
		if err != nil {
			return err
		}
		log.WithFields(map[string]any{"variable": name, "value": value}).Info("variable")
	}
	return nil
}

func containsDynamicContent(s string) bool {
	return strings.Contains(s, "${") || strings.Contains(s, "citrus:")
}
