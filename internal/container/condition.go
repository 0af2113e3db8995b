package container

import (
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/citrine/internal/expr"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// DefaultIndexName is the loop variable used when none is configured.
const DefaultIndexName = "i"

// ConditionFunc evaluates a loop or branch condition programmatically. It receives the raw
// index of the round being decided.
type ConditionFunc func(index int, tc *testcontext.Context) bool

type condition struct {
	source string
	parsed *expr.Expression
	fn     ConditionFunc
}

// newCondition prefers fn over the expression. Expressions without dynamic content are
// parsed up front so malformed conditions fail at construction.
func newCondition(field, source string, fn ConditionFunc) (condition, error) {
	if fn != nil {
		return condition{fn: fn}, nil
	}
	if strings.TrimSpace(source) == "" {
		return condition{}, citrineerrors.NewValidationError(field, "condition expression or function is required", nil)
	}

	c := condition{source: source}
	if !strings.Contains(source, "${") && !strings.Contains(source, "citrus:") {
		parsed, err := expr.Parse(source)
		if err != nil {
			return condition{}, err
		}
		c.parsed = parsed
	}
	return c, nil
}

// String returns the expression text, or "<func>" for programmatic conditions.
func (c condition) String() string {
	if c.fn != nil {
		return "<func>"
	}
	return c.source
}

// evaluate decides the condition for the given index. Bare identifiers equal to indexName
// resolve to the index; other identifiers resolve through the context variables.
func (c condition) evaluate(indexName string, index int, tc *testcontext.Context) (bool, error) {
	if c.fn != nil {
		return c.fn(index, tc), nil
	}

	current := strconv.Itoa(index)
	parsed := c.parsed
	if parsed == nil {
		source := c.source
		if indexName != "" {
			source = strings.ReplaceAll(source, "${"+indexName+"}", current)
		}
		resolved, err := tc.ReplaceDynamicContent(source)
		if err != nil {
			return false, err
		}
		if parsed, err = expr.Parse(resolved); err != nil {
			return false, err
		}
	}

	return parsed.Eval(func(name string) (string, bool) {
		if indexName != "" && name == indexName {
			return current, true
		}
		return tc.LookupVariable(name)
	})
}
