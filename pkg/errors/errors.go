package errors

import (
	"fmt"
	"strings"
	"time"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a runtime failure while executing a test action.
type ExecutionError struct {
	Action string
	Err    error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(action string, err error) error {
	return &ExecutionError{Action: action, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("execution error on action %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ActionTimeoutError is returned when no message arrives within the receive window.
type ActionTimeoutError struct {
	Channel string
	Timeout time.Duration
}

// NewActionTimeoutError constructs an ActionTimeoutError.
func NewActionTimeoutError(channel string, timeout time.Duration) error {
	return &ActionTimeoutError{Channel: channel, Timeout: timeout}
}

func (e *ActionTimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("Action timeout while receiving message from channel '%s' (timeout %dms)",
		e.Channel, e.Timeout.Milliseconds())
}

// VariableNotFoundError reports a reference to a variable missing from the test context.
type VariableNotFoundError struct {
	Name string
}

// NewVariableNotFoundError constructs a VariableNotFoundError.
func NewVariableNotFoundError(name string) error {
	return &VariableNotFoundError{Name: name}
}

func (e *VariableNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown variable '%s'", e.Name)
}

// FunctionNotFoundError reports a citrus: call to a function that is not registered.
type FunctionNotFoundError struct {
	Name string
}

// NewFunctionNotFoundError constructs a FunctionNotFoundError.
func NewFunctionNotFoundError(name string) error {
	return &FunctionNotFoundError{Name: name}
}

func (e *FunctionNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unknown function 'citrus:%s'", e.Name)
}

// UnsupportedOperationError is returned when a channel lacks a requested capability.
type UnsupportedOperationError struct {
	Operation string
	Target    string
}

// NewUnsupportedOperationError constructs an UnsupportedOperationError.
func NewUnsupportedOperationError(operation, target string) error {
	return &UnsupportedOperationError{Operation: operation, Target: target}
}

func (e *UnsupportedOperationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unsupported operation: %s is not supported by '%s'", e.Operation, e.Target)
}

// ExpressionError describes a malformed or non-evaluable condition expression.
type ExpressionError struct {
	Expression string
	Pos        int
	Message    string
}

// NewExpressionError constructs an ExpressionError.
func NewExpressionError(expression string, pos int, message string) error {
	return &ExpressionError{Expression: expression, Pos: pos, Message: message}
}

func (e *ExpressionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid expression %q at position %d: %s", e.Expression, e.Pos, e.Message)
}

// AggregateError collects the failures of concurrently executed actions.
type AggregateError struct {
	Action string
	Errs   []error
}

// NewAggregateError constructs an AggregateError; it returns nil when errs is empty.
func NewAggregateError(action string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Action: action, Errs: append([]error(nil), errs...)}
}

func (e *AggregateError) Error() string {
	if e == nil {
		return ""
	}
	messages := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d of the actions in %s failed: %s", len(e.Errs), e.Action, strings.Join(messages, "; "))
}

// Unwrap exposes every collected failure to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.Errs
}

// RepeatExhaustedError is returned when a retrying container gives up.
type RepeatExhaustedError struct {
	Action string
	Rounds int
	Err    error
}

// NewRepeatExhaustedError constructs a RepeatExhaustedError.
func NewRepeatExhaustedError(action string, rounds int, err error) error {
	return &RepeatExhaustedError{Action: action, Rounds: rounds, Err: err}
}

func (e *RepeatExhaustedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to pass %s after %d rounds: %v", e.Action, e.Rounds, e.Err)
}

// Unwrap exposes the failure of the final round.
func (e *RepeatExhaustedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationFailedError reports a received message that does not match expectations.
type ValidationFailedError struct {
	Subject  string
	Expected string
	Actual   string
	Diff     string
}

// NewValidationFailedError constructs a ValidationFailedError.
func NewValidationFailedError(subject, expected, actual string) error {
	return &ValidationFailedError{Subject: subject, Expected: expected, Actual: actual}
}

func (e *ValidationFailedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Diff != "" {
		return fmt.Sprintf("validation failed for %s:\n%s", e.Subject, e.Diff)
	}
	return fmt.Sprintf("validation failed for %s: expected '%s' but was '%s'", e.Subject, e.Expected, e.Actual)
}
