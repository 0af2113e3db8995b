// Package testcontext holds the mutable state shared by every action of one test run:
// variables, the function registry, received and sent messages, and action listeners.
package testcontext

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/logger"
	"github.com/alexisbeaulieu97/citrine/internal/message"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// TestNameVariable is bound to the name of the running test case.
const TestNameVariable = "citrus.test.name"

// ActionListener observes action execution. ActionStarted may return a derived
// context that is handed to the action and later to ActionFinished.
type ActionListener interface {
	ActionStarted(ctx context.Context, name string) context.Context
	ActionFinished(ctx context.Context, name string, err error, duration time.Duration)
}

// ActionStatus is the state of an action in the trace.
type ActionStatus string

const (
	ActionRunning ActionStatus = "running"
	ActionSuccess ActionStatus = "success"
	ActionFailed  ActionStatus = "failed"
	ActionSkipped ActionStatus = "skipped"
)

// ActionRecord is one entry of the action trace of a test run.
type ActionRecord struct {
	Name     string
	Depth    int
	Status   ActionStatus
	Err      error
	Duration time.Duration
}

// Context is safe for concurrent use by the workers of a parallel container.
type Context struct {
	mu        sync.RWMutex
	variables map[string]any

	msgMu        sync.RWMutex
	messages     map[string]*message.Message
	messageOrder []string

	traceMu sync.Mutex
	trace   []ActionRecord

	functions *FunctionRegistry
	listeners []ActionListener
	log       *logger.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used by actions.
func WithLogger(log *logger.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithFunctions replaces the default function library.
func WithFunctions(registry *FunctionRegistry) Option {
	return func(c *Context) { c.functions = registry }
}

// WithListeners registers action listeners.
func WithListeners(listeners ...ActionListener) Option {
	return func(c *Context) { c.listeners = append(c.listeners, listeners...) }
}

// New creates an empty context with the default function library.
func New(opts ...Option) *Context {
	c := &Context{
		variables: make(map[string]any),
		messages:  make(map[string]*message.Message),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.functions == nil {
		c.functions = DefaultFunctions()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c
}

// Logger returns the context logger; never nil.
func (c *Context) Logger() *logger.Logger {
	return c.log
}

// Functions returns the function registry.
func (c *Context) Functions() *FunctionRegistry {
	return c.functions
}

// Listeners returns the registered action listeners.
func (c *Context) Listeners() []ActionListener {
	return c.listeners
}

// SetVariable inserts or overwrites a variable.
func (c *Context) SetVariable(name string, value any) {
	c.mu.Lock()
	c.variables[name] = value
	c.mu.Unlock()
}

// SetVariables binds every entry of vars.
func (c *Context) SetVariables(vars map[string]any) {
	c.mu.Lock()
	for k, v := range vars {
		c.variables[k] = v
	}
	c.mu.Unlock()
}

// HasVariable reports whether name is bound.
func (c *Context) HasVariable(name string) bool {
	c.mu.RLock()
	_, ok := c.variables[name]
	c.mu.RUnlock()
	return ok
}

// VariableObject returns the raw variable value.
func (c *Context) VariableObject(name string) (any, error) {
	c.mu.RLock()
	v, ok := c.variables[name]
	c.mu.RUnlock()
	if !ok {
		return nil, citrineerrors.NewVariableNotFoundError(name)
	}
	return v, nil
}

// Variable returns the variable rendered as a string.
func (c *Context) Variable(name string) (string, error) {
	v, err := c.VariableObject(name)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}

// LookupVariable is the non-failing form of Variable.
func (c *Context) LookupVariable(name string) (string, bool) {
	v, err := c.Variable(name)
	return v, err == nil
}

// Variables returns a snapshot of every bound variable.
func (c *Context) Variables() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}

// VariableNames returns the bound names in sorted order.
func (c *Context) VariableNames() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.variables))
	for k := range c.variables {
		names = append(names, k)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// SaveMessage stores a message under a correlation name, replacing any earlier one.
func (c *Context) SaveMessage(name string, msg *message.Message) {
	c.msgMu.Lock()
	defer c.msgMu.Unlock()
	if _, exists := c.messages[name]; !exists {
		c.messageOrder = append(c.messageOrder, name)
	}
	c.messages[name] = msg
}

// Message retrieves a stored message.
func (c *Context) Message(name string) (*message.Message, bool) {
	c.msgMu.RLock()
	defer c.msgMu.RUnlock()
	m, ok := c.messages[name]
	return m, ok
}

// MessageNames returns the correlation names in the order they were first stored.
func (c *Context) MessageNames() []string {
	c.msgMu.RLock()
	defer c.msgMu.RUnlock()
	return append([]string(nil), c.messageOrder...)
}

// StartAction appends a running entry to the action trace and returns its index.
func (c *Context) StartAction(name string, depth int) int {
	c.traceMu.Lock()
	defer c.traceMu.Unlock()
	c.trace = append(c.trace, ActionRecord{Name: name, Depth: depth, Status: ActionRunning})
	return len(c.trace) - 1
}

// FinishAction completes the trace entry returned by StartAction.
func (c *Context) FinishAction(index int, err error, duration time.Duration) {
	c.traceMu.Lock()
	defer c.traceMu.Unlock()
	if index < 0 || index >= len(c.trace) {
		return
	}
	record := &c.trace[index]
	record.Duration = duration
	record.Err = err
	record.Status = ActionSuccess
	if err != nil {
		record.Status = ActionFailed
	}
}

// SkipAction records an action that was not executed.
func (c *Context) SkipAction(name string, depth int) {
	c.traceMu.Lock()
	c.trace = append(c.trace, ActionRecord{Name: name, Depth: depth, Status: ActionSkipped})
	c.traceMu.Unlock()
}

// Trace returns the action trace recorded so far.
func (c *Context) Trace() []ActionRecord {
	c.traceMu.Lock()
	defer c.traceMu.Unlock()
	return append([]ActionRecord(nil), c.trace...)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
