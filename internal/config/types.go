package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config represents a complete test suite document.
type Config struct {
	Version     string     `yaml:"version" validate:"required,semver"`
	Name        string     `yaml:"name" validate:"required,min=1,max=100"`
	Description string     `yaml:"description,omitempty"`
	Settings    Settings   `yaml:"settings,omitempty"`
	Variables   Variables  `yaml:"variables,omitempty" validate:"dive"`
	Endpoints   []Endpoint `yaml:"endpoints,omitempty" validate:"dive"`
	BeforeSuite []Action   `yaml:"before_suite,omitempty" validate:"dive"`
	AfterSuite  []Action   `yaml:"after_suite,omitempty" validate:"dive"`
	BeforeTest  []Action   `yaml:"before_test,omitempty" validate:"dive"`
	AfterTest   []Action   `yaml:"after_test,omitempty" validate:"dive"`
	Tests       []Test     `yaml:"tests" validate:"required,min=1,dive"`
}

// Settings holds suite-wide execution parameters. Durations are Go duration strings or
// plain milliseconds.
type Settings struct {
	Timeout               string `yaml:"timeout,omitempty" validate:"omitempty,duration"`
	DefaultReceiveTimeout string `yaml:"default_receive_timeout,omitempty" validate:"omitempty,duration"`
	AutoSleep             string `yaml:"auto_sleep,omitempty" validate:"omitempty,duration"`
}

// Endpoint declares an in-memory message channel.
type Endpoint struct {
	Name     string `yaml:"name" validate:"required,identifier"`
	Type     string `yaml:"type" validate:"required,oneof=queue direct"`
	Capacity int    `yaml:"capacity,omitempty" validate:"min=0"`
	Timeout  string `yaml:"timeout,omitempty" validate:"omitempty,duration"`
}

// Test is a single named test case.
type Test struct {
	Name        string    `yaml:"name" validate:"required,min=1"`
	Description string    `yaml:"description,omitempty"`
	Variables   Variables `yaml:"variables,omitempty" validate:"dive"`
	Actions     []Action  `yaml:"actions" validate:"dive"`
	Finally     []Action  `yaml:"finally,omitempty" validate:"dive"`
}

// Variable is a single name/value pair.
type Variable struct {
	Name  string `validate:"required"`
	Value string
}

// Variables keeps the document order of a YAML mapping so later values may refer to
// earlier ones.
type Variables []Variable

// UnmarshalYAML decodes a mapping of scalar values in document order.
func (v *Variables) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variables must be a mapping", value.Line)
	}
	out := make(Variables, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: variable %q must be a scalar", val.Line, key.Value)
		}
		out = append(out, Variable{Name: key.Value, Value: val.Value})
	}
	*v = out
	return nil
}

// Action describes one entry of an action list. Exactly one of the type-specific
// structures is populated, selected by Type.
type Action struct {
	Type        string `yaml:"type" validate:"required,action_type"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Disabled    bool   `yaml:"disabled,omitempty"`

	Echo            *EchoAction            `yaml:"-"`
	Sleep           *SleepAction           `yaml:"-"`
	CreateVariables *CreateVariablesAction `yaml:"-"`
	TraceVariables  *TraceVariablesAction  `yaml:"-"`
	Fail            *FailAction            `yaml:"-"`
	Send            *SendAction            `yaml:"-"`
	Receive         *ReceiveAction         `yaml:"-"`
	Purge           *PurgeEndpointAction   `yaml:"-"`
	Container       *ContainerAction       `yaml:"-"`
}

// UnmarshalYAML decodes the common keys first, then the keys of the selected type.
func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	type baseAction struct {
		Type        string `yaml:"type"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Disabled    bool   `yaml:"disabled"`
	}

	var base baseAction
	if err := value.Decode(&base); err != nil {
		return err
	}

	*a = Action{
		Type:        base.Type,
		Name:        base.Name,
		Description: base.Description,
		Disabled:    base.Disabled,
	}

	switch base.Type {
	case "echo":
		return decodeInto(value, &a.Echo)
	case "sleep":
		return decodeInto(value, &a.Sleep)
	case "create-variables":
		return decodeInto(value, &a.CreateVariables)
	case "trace-variables":
		return decodeInto(value, &a.TraceVariables)
	case "fail":
		return decodeInto(value, &a.Fail)
	case "send":
		return decodeInto(value, &a.Send)
	case "receive":
		return decodeInto(value, &a.Receive)
	case "purge-endpoint":
		return decodeInto(value, &a.Purge)
	default:
		if IsContainerType(base.Type) {
			return decodeInto(value, &a.Container)
		}
	}

	// Unknown types are reported by validation with the field path.
	return nil
}

func decodeInto[T any](value *yaml.Node, target **T) error {
	var out T
	if err := value.Decode(&out); err != nil {
		return err
	}
	*target = &out
	return nil
}

// IsContainerType reports whether actions of the given type hold nested actions.
func IsContainerType(t string) bool {
	switch t {
	case "sequential", "parallel", "iterate", "repeat-on-error", "repeat", "conditional":
		return true
	}
	return false
}

// EchoAction logs a message.
type EchoAction struct {
	Message string `yaml:"message,omitempty"`
}

// SleepAction pauses for Time, which may contain variables.
type SleepAction struct {
	Time string `yaml:"time,omitempty"`
}

// CreateVariablesAction binds variables in order.
type CreateVariablesAction struct {
	Variables Variables `yaml:"variables" validate:"required,min=1,dive"`
}

// TraceVariablesAction logs the named variables, or every variable when none are named.
type TraceVariablesAction struct {
	Variables []string `yaml:"variables,omitempty"`
}

// FailAction fails the test with Message.
type FailAction struct {
	Message string `yaml:"message,omitempty"`
}

// SendAction publishes a message to an endpoint.
type SendAction struct {
	Endpoint    string            `yaml:"endpoint" validate:"required"`
	Payload     string            `yaml:"payload,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	HeaderData  []string          `yaml:"header_data,omitempty"`
	MessageName string            `yaml:"message_name,omitempty"`
}

// ReceiveAction consumes and validates one message from an endpoint.
type ReceiveAction struct {
	Endpoint       string            `yaml:"endpoint" validate:"required"`
	Selector       string            `yaml:"selector,omitempty"`
	Timeout        string            `yaml:"timeout,omitempty" validate:"omitempty,duration"`
	Payload        string            `yaml:"payload,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	ExtractHeaders map[string]string `yaml:"extract_headers,omitempty"`
	ExtractPaths   map[string]string `yaml:"extract_paths,omitempty"`
	MessageName    string            `yaml:"message_name,omitempty"`
}

// PurgeEndpointAction drops pending messages from endpoints.
type PurgeEndpointAction struct {
	Endpoints []string `yaml:"endpoints" validate:"required,min=1,dive,required"`
}

// ContainerAction carries the keys shared by the container types. Which keys apply
// depends on the type: iterate, repeat and repeat-on-error use the index and condition
// keys, conditional uses Expression, repeat-on-error also uses AutoSleep.
type ContainerAction struct {
	Actions    []Action `yaml:"actions" validate:"dive"`
	IndexName  string   `yaml:"index,omitempty" validate:"omitempty,identifier"`
	Start      *int     `yaml:"start,omitempty"`
	Step       int      `yaml:"step,omitempty"`
	Condition  string   `yaml:"condition,omitempty"`
	Expression string   `yaml:"expression,omitempty"`
	AutoSleep  string   `yaml:"auto_sleep,omitempty" validate:"omitempty,duration"`
}

// TestNames returns the test names in document order.
func (c *Config) TestNames() []string {
	names := make([]string, 0, len(c.Tests))
	for _, test := range c.Tests {
		names = append(names, test.Name)
	}
	return names
}
