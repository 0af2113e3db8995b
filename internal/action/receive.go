package action

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alexisbeaulieu97/citrine/internal/endpoint"
	"github.com/alexisbeaulieu97/citrine/internal/message"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	"github.com/alexisbeaulieu97/citrine/internal/validation"
	"github.com/alexisbeaulieu97/citrine/pkg/diff"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

const canonicalJSON = `@pretty:{"sortKeys":true}`

// ReceiveConfig configures a Receive action.
//
// Payload and Headers are expectations and may contain variables. ExtractHeaders maps a
// header name to a variable name; ExtractPaths maps a JSON path such as "$.user.name" to a
// variable name. Extraction runs before validation so expectations can use extracted values.
type ReceiveConfig struct {
	Meta           `yaml:",inline"`
	Endpoint       endpoint.Endpoint `yaml:"-" validate:"required"`
	Selector       string            `yaml:"selector,omitempty"`
	Timeout        time.Duration     `yaml:"-" validate:"min=0"`
	Payload        string            `yaml:"payload,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	ExtractHeaders map[string]string `yaml:"extract_headers,omitempty"`
	ExtractPaths   map[string]string `yaml:"extract_paths,omitempty"`
	MessageName    string            `yaml:"message_name,omitempty"`
}

// Receive consumes one message from an endpoint, extracts variables and validates it.
type Receive struct {
	Base
	endpoint       endpoint.Endpoint
	selector       string
	timeout        time.Duration
	payload        string
	headers        map[string]string
	extractHeaders map[string]string
	extractPaths   map[string]string
	messageName    string
}

// NewReceive validates cfg and builds a Receive action.
func NewReceive(cfg ReceiveConfig) (*Receive, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}
	return &Receive{
		Base:           NewBase(cfg.Meta, "receive"),
		endpoint:       cfg.Endpoint,
		selector:       cfg.Selector,
		timeout:        cfg.Timeout,
		payload:        cfg.Payload,
		headers:        copyMap(cfg.Headers),
		extractHeaders: copyMap(cfg.ExtractHeaders),
		extractPaths:   copyMap(cfg.ExtractPaths),
		messageName:    cfg.MessageName,
	}, nil
}

// Endpoint returns the source endpoint.
func (r *Receive) Endpoint() endpoint.Endpoint {
	return r.endpoint
}

// Execute implements Action.
func (r *Receive) Execute(ctx context.Context, tc *testcontext.Context) error {
	selector, err := tc.ReplaceDynamicContent(r.selector)
	if err != nil {
		return err
	}

	msg, err := r.endpoint.CreateConsumer().Receive(ctx, tc, endpoint.ReceiveOptions{Selector: selector, Timeout: r.timeout})
	if err != nil {
		return err
	}
	tc.SaveMessage(storeName(r.messageName, r.endpoint), msg)

	if err := r.extract(msg, tc); err != nil {
		return err
	}
	if err := r.validateHeaders(msg, tc); err != nil {
		return err
	}
	if err := r.validatePayload(msg, tc); err != nil {
		return err
	}

	tc.Logger().WithFields(map[string]any{
		"action":     r.Name(),
		"endpoint":   r.endpoint.Name(),
		"message_id": msg.ID(),
	}).Info("message received")
	return nil
}

func (r *Receive) extract(msg *message.Message, tc *testcontext.Context) error {
	for _, header := range sortedKeys(r.extractHeaders) {
		value, ok := msg.HeaderString(header)
		if !ok {
			return fmt.Errorf("failed to extract header '%s': not present in received message", header)
		}
		tc.SetVariable(r.extractHeaders[header], value)
	}

	if len(r.extractPaths) == 0 {
		return nil
	}
	payload := msg.PayloadString()
	if !gjson.Valid(payload) {
		return fmt.Errorf("failed to extract JSON paths: payload of message %s is not JSON", msg.ID())
	}
	for _, path := range sortedKeys(r.extractPaths) {
		result := gjson.Get(payload, gjsonPath(path))
		if !result.Exists() {
			return fmt.Errorf("failed to extract JSON path '%s': no match in received message", path)
		}
		tc.SetVariable(r.extractPaths[path], result.String())
	}
	return nil
}

func (r *Receive) validateHeaders(msg *message.Message, tc *testcontext.Context) error {
	for _, header := range sortedKeys(r.headers) {
		expected, err := tc.ReplaceDynamicContent(r.headers[header])
		if err != nil {
			return err
		}
		actual, ok := msg.HeaderString(header)
		if !ok || actual != expected {
			return citrineerrors.NewValidationFailedError(fmt.Sprintf("header '%s'", header), expected, actual)
		}
	}
	return nil
}

func (r *Receive) validatePayload(msg *message.Message, tc *testcontext.Context) error {
	if r.payload == "" {
		return nil
	}
	expected, err := tc.ReplaceDynamicContent(r.payload)
	if err != nil {
		return err
	}
	actual := msg.PayloadString()

	if isJSONDocument(expected) && isJSONDocument(actual) {
		expected = gjson.Get(expected, canonicalJSON).String()
		actual = gjson.Get(actual, canonicalJSON).String()
	} else {
		expected = strings.TrimSpace(expected)
		actual = strings.TrimSpace(actual)
	}
	if expected == actual {
		return nil
	}

	return &citrineerrors.ValidationFailedError{
		Subject:  "message payload",
		Expected: expected,
		Actual:   actual,
		Diff:     diff.Payloads(expected, actual),
	}
}

func isJSONDocument(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return gjson.Valid(trimmed)
}

// gjsonPath strips the leading "$." of a JSON path so it can be handed to gjson.
func gjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	return strings.TrimPrefix(path, ".")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
