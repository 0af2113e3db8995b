// Package loader turns validated suite documents into runnable suites: endpoints are
// registered first, then every action list is converted into its runtime tree.
package loader

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/config"
	"github.com/alexisbeaulieu97/citrine/internal/container"
	"github.com/alexisbeaulieu97/citrine/internal/endpoint"
	"github.com/alexisbeaulieu97/citrine/internal/runner"
	"github.com/alexisbeaulieu97/citrine/internal/testcase"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// Loaded is a runnable suite together with the endpoints it references.
type Loaded struct {
	Suite     *runner.Suite
	Endpoints *endpoint.Registry
	// TestTimeout bounds each test; zero means no limit.
	TestTimeout time.Duration
}

type converter struct {
	registry  *endpoint.Registry
	autoSleep *time.Duration
}

// Load converts cfg. The document is validated again so callers may build configs in code.
func Load(cfg *config.Config) (*Loaded, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	settings, err := parseSettings(cfg.Settings)
	if err != nil {
		return nil, err
	}

	registry, err := buildEndpoints(cfg.Endpoints, settings.receiveTimeout)
	if err != nil {
		return nil, err
	}

	conv := &converter{registry: registry, autoSleep: settings.autoSleep}
	suite := &runner.Suite{Name: cfg.Name, Variables: convertVariables(cfg.Variables)}

	hooks := []struct {
		field  string
		source []config.Action
		target *[]action.Action
	}{
		{"before_suite", cfg.BeforeSuite, &suite.BeforeSuite},
		{"after_suite", cfg.AfterSuite, &suite.AfterSuite},
		{"before_test", cfg.BeforeTest, &suite.BeforeTest},
		{"after_test", cfg.AfterTest, &suite.AfterTest},
	}
	for _, hook := range hooks {
		if *hook.target, err = conv.actions(hook.field, hook.source); err != nil {
			return nil, err
		}
	}

	for i, test := range cfg.Tests {
		tcase, err := conv.test(fmt.Sprintf("tests[%d]", i), test)
		if err != nil {
			return nil, err
		}
		suite.Tests = append(suite.Tests, tcase)
	}

	return &Loaded{Suite: suite, Endpoints: registry, TestTimeout: settings.testTimeout}, nil
}

type settings struct {
	testTimeout    time.Duration
	receiveTimeout time.Duration
	autoSleep      *time.Duration
}

func parseSettings(s config.Settings) (settings, error) {
	var out settings
	var err error
	if s.Timeout != "" {
		if out.testTimeout, err = validation.ParseDuration(s.Timeout); err != nil {
			return out, citrineerrors.NewValidationError("settings.timeout", err.Error(), err)
		}
	}
	if s.DefaultReceiveTimeout != "" {
		if out.receiveTimeout, err = validation.ParseDuration(s.DefaultReceiveTimeout); err != nil {
			return out, citrineerrors.NewValidationError("settings.default_receive_timeout", err.Error(), err)
		}
	}
	if s.AutoSleep != "" {
		d, err := validation.ParseDuration(s.AutoSleep)
		if err != nil {
			return out, citrineerrors.NewValidationError("settings.auto_sleep", err.Error(), err)
		}
		out.autoSleep = &d
	}
	return out, nil
}

func buildEndpoints(defs []config.Endpoint, defaultTimeout time.Duration) (*endpoint.Registry, error) {
	registry := endpoint.NewRegistry()
	for i, def := range defs {
		timeout := defaultTimeout
		if def.Timeout != "" {
			d, err := validation.ParseDuration(def.Timeout)
			if err != nil {
				return nil, citrineerrors.NewValidationError(fmt.Sprintf("endpoints[%d].timeout", i), err.Error(), err)
			}
			timeout = d
		}

		var channel endpoint.Channel
		switch def.Type {
		case "queue":
			channel = endpoint.NewQueueChannel(def.Name, def.Capacity)
		case "direct":
			channel = endpoint.NewDirectChannel(def.Name, def.Capacity)
		default:
			return nil, citrineerrors.NewValidationError(fmt.Sprintf("endpoints[%d].type", i), fmt.Sprintf("unsupported endpoint type %q", def.Type), nil)
		}

		if err := registry.Register(endpoint.NewChannelEndpoint(def.Name, channel, timeout)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (c *converter) test(field string, def config.Test) (*testcase.TestCase, error) {
	actions, err := c.actions(field+".actions", def.Actions)
	if err != nil {
		return nil, err
	}
	finally, err := c.actions(field+".finally", def.Finally)
	if err != nil {
		return nil, err
	}
	return testcase.New(testcase.Config{
		Name:        def.Name,
		Description: def.Description,
		Variables:   convertVariables(def.Variables),
		Actions:     actions,
		Finally:     finally,
	})
}

func (c *converter) actions(field string, defs []config.Action) ([]action.Action, error) {
	out := make([]action.Action, 0, len(defs))
	for i, def := range defs {
		a, err := c.action(fmt.Sprintf("%s[%d]", field, i), def)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *converter) action(field string, def config.Action) (action.Action, error) {
	meta := action.Meta{Name: def.Name, Description: def.Description, Disabled: def.Disabled}

	a, err := c.build(field, meta, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}

func (c *converter) build(field string, meta action.Meta, def config.Action) (action.Action, error) {
	switch def.Type {
	case "echo":
		return action.NewEcho(action.EchoConfig{Meta: meta, Message: def.Echo.Message})
	case "sleep":
		return action.NewSleep(action.SleepConfig{Meta: meta, Time: def.Sleep.Time})
	case "create-variables":
		return action.NewCreateVariables(action.CreateVariablesConfig{Meta: meta, Variables: convertVariables(def.CreateVariables.Variables)})
	case "trace-variables":
		return action.NewTraceVariables(action.TraceVariablesConfig{Meta: meta, Variables: def.TraceVariables.Variables})
	case "fail":
		return action.NewFail(action.FailConfig{Meta: meta, Message: def.Fail.Message})
	case "send":
		return c.send(meta, def.Send)
	case "receive":
		return c.receive(meta, def.Receive)
	case "purge-endpoint":
		endpoints := make([]endpoint.Endpoint, 0, len(def.Purge.Endpoints))
		for _, name := range def.Purge.Endpoints {
			ep, err := c.registry.Get(name)
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, ep)
		}
		return action.NewPurgeEndpoint(action.PurgeEndpointConfig{Meta: meta, Endpoints: endpoints})
	default:
		return c.container(field, meta, def)
	}
}

func (c *converter) send(meta action.Meta, def *config.SendAction) (action.Action, error) {
	ep, err := c.registry.Get(def.Endpoint)
	if err != nil {
		return nil, err
	}
	return action.NewSend(action.SendConfig{
		Meta:        meta,
		Endpoint:    ep,
		Payload:     def.Payload,
		Headers:     def.Headers,
		HeaderData:  def.HeaderData,
		MessageName: def.MessageName,
	})
}

func (c *converter) receive(meta action.Meta, def *config.ReceiveAction) (action.Action, error) {
	ep, err := c.registry.Get(def.Endpoint)
	if err != nil {
		return nil, err
	}
	var timeout time.Duration
	if def.Timeout != "" {
		if timeout, err = validation.ParseDuration(def.Timeout); err != nil {
			return nil, err
		}
	}
	return action.NewReceive(action.ReceiveConfig{
		Meta:           meta,
		Endpoint:       ep,
		Selector:       def.Selector,
		Timeout:        timeout,
		Payload:        def.Payload,
		Headers:        def.Headers,
		ExtractHeaders: def.ExtractHeaders,
		ExtractPaths:   def.ExtractPaths,
		MessageName:    def.MessageName,
	})
}

func (c *converter) container(field string, meta action.Meta, def config.Action) (action.Action, error) {
	body := def.Container
	if body == nil {
		return nil, citrineerrors.NewValidationError(field, fmt.Sprintf("%s configuration is required", def.Type), nil)
	}

	children, err := c.actions(field+".actions", body.Actions)
	if err != nil {
		return nil, err
	}

	switch def.Type {
	case "sequential":
		return container.NewSequence(container.SequenceConfig{Meta: meta, Actions: children})
	case "parallel":
		return container.NewParallel(container.ParallelConfig{Meta: meta, Actions: children})
	case "iterate":
		return container.NewIterate(container.IterateConfig{
			Meta:      meta,
			Actions:   children,
			IndexName: body.IndexName,
			Start:     body.Start,
			Step:      body.Step,
			Condition: body.Condition,
		})
	case "repeat":
		return container.NewRepeatUntilTrue(container.RepeatConfig{
			Meta:      meta,
			Actions:   children,
			IndexName: body.IndexName,
			Start:     body.Start,
			Condition: body.Condition,
		})
	case "repeat-on-error":
		autoSleep := c.autoSleep
		if body.AutoSleep != "" {
			d, err := validation.ParseDuration(body.AutoSleep)
			if err != nil {
				return nil, err
			}
			autoSleep = &d
		}
		return container.NewRepeatOnErrorUntilTrue(container.RepeatOnErrorConfig{
			Meta:      meta,
			Actions:   children,
			IndexName: body.IndexName,
			Start:     body.Start,
			AutoSleep: autoSleep,
			Condition: body.Condition,
		})
	case "conditional":
		return container.NewConditional(container.ConditionalConfig{Meta: meta, Actions: children, Expression: body.Expression})
	}

	return nil, citrineerrors.NewValidationError(field+".type", fmt.Sprintf("unsupported action type %q", def.Type), nil)
}

func convertVariables(vars config.Variables) []action.Variable {
	out := make([]action.Variable, 0, len(vars))
	for _, v := range vars {
		out = append(out, action.Variable{Name: v.Name, Value: v.Value})
	}
	return out
}
