package config

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/citrine/internal/expr"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// ValidateConfig performs schema and cross-field validation on a suite document.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return citrineerrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validation.Struct(cfg); err != nil {
		return err
	}

	endpoints := make(map[string]struct{}, len(cfg.Endpoints))
	for i, ep := range cfg.Endpoints {
		if _, exists := endpoints[ep.Name]; exists {
			return citrineerrors.NewValidationError(fmt.Sprintf("endpoints[%d].name", i), fmt.Sprintf("duplicate endpoint name %q", ep.Name), nil)
		}
		endpoints[ep.Name] = struct{}{}
	}

	hooks := []struct {
		field   string
		actions []Action
	}{
		{"before_suite", cfg.BeforeSuite},
		{"after_suite", cfg.AfterSuite},
		{"before_test", cfg.BeforeTest},
		{"after_test", cfg.AfterTest},
	}
	for _, hook := range hooks {
		if err := validateActions(hook.field, hook.actions, endpoints); err != nil {
			return err
		}
	}

	tests := make(map[string]struct{}, len(cfg.Tests))
	for i, test := range cfg.Tests {
		if _, exists := tests[test.Name]; exists {
			return citrineerrors.NewValidationError(fieldForTest(i, "name"), fmt.Sprintf("duplicate test name %q", test.Name), nil)
		}
		tests[test.Name] = struct{}{}

		if err := validateActions(fieldForTest(i, "actions"), test.Actions, endpoints); err != nil {
			return err
		}
		if err := validateActions(fieldForTest(i, "finally"), test.Finally, endpoints); err != nil {
			return err
		}
	}

	return nil
}

func validateActions(field string, actions []Action, endpoints map[string]struct{}) error {
	for i, a := range actions {
		if err := ValidateAction(fmt.Sprintf("%s[%d]", field, i), a, endpoints); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAction validates a single action and, for containers, its nested actions.
// Endpoint references are checked against endpoints when it is non-nil.
func ValidateAction(field string, a Action, endpoints map[string]struct{}) error {
	if err := validation.Struct(a); err != nil {
		return err
	}

	missing := func() error {
		return citrineerrors.NewValidationError(field, fmt.Sprintf("%s configuration is required", a.Type), nil)
	}

	switch a.Type {
	case "echo":
		if a.Echo == nil {
			return missing()
		}
	case "sleep":
		if a.Sleep == nil {
			return missing()
		}
		if a.Sleep.Time != "" && !isDynamic(a.Sleep.Time) {
			if _, err := validation.ParseDuration(a.Sleep.Time); err != nil {
				return citrineerrors.NewValidationError(field+".time", fmt.Sprintf("invalid duration %q", a.Sleep.Time), err)
			}
		}
	case "create-variables":
		if a.CreateVariables == nil {
			return missing()
		}
	case "trace-variables":
		if a.TraceVariables == nil {
			return missing()
		}
	case "fail":
		if a.Fail == nil {
			return missing()
		}
	case "send":
		if a.Send == nil {
			return missing()
		}
		return checkEndpoint(field+".endpoint", a.Send.Endpoint, endpoints)
	case "receive":
		if a.Receive == nil {
			return missing()
		}
		return checkEndpoint(field+".endpoint", a.Receive.Endpoint, endpoints)
	case "purge-endpoint":
		if a.Purge == nil {
			return missing()
		}
		for i, name := range a.Purge.Endpoints {
			if err := checkEndpoint(fmt.Sprintf("%s.endpoints[%d]", field, i), name, endpoints); err != nil {
				return err
			}
		}
	default:
		if a.Container == nil {
			return missing()
		}
		return validateContainer(field, a, endpoints)
	}

	return nil
}

func validateContainer(field string, a Action, endpoints map[string]struct{}) error {
	c := a.Container
	switch a.Type {
	case "iterate", "repeat", "repeat-on-error":
		if err := checkCondition(field+".condition", c.Condition); err != nil {
			return err
		}
	case "conditional":
		if err := checkCondition(field+".expression", c.Expression); err != nil {
			return err
		}
	}
	return validateActions(field+".actions", c.Actions, endpoints)
}

func checkCondition(field, source string) error {
	if strings.TrimSpace(source) == "" {
		return citrineerrors.NewValidationError(field, "condition is required", nil)
	}
	if isDynamic(source) {
		return nil
	}
	if _, err := expr.Parse(source); err != nil {
		return citrineerrors.NewValidationError(field, err.Error(), err)
	}
	return nil
}

func checkEndpoint(field, name string, endpoints map[string]struct{}) error {
	if endpoints == nil {
		return nil
	}
	if _, ok := endpoints[name]; !ok {
		return citrineerrors.NewValidationError(field, fmt.Sprintf("references unknown endpoint %q", name), nil)
	}
	return nil
}

func isDynamic(value string) bool {
	return strings.Contains(value, "${") || strings.Contains(value, "citrus:")
}

func fieldForTest(index int, field string) string {
	return fmt.Sprintf("tests[%d].%s", index, field)
}
