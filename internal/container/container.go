// Package container implements the composite actions that decide how and whether their
// children run: in sequence, in parallel, repeatedly or conditionally.
package container

import (
	"github.com/alexisbeaulieu97/citrine/internal/action"
)

// Container is an action that owns an ordered list of child actions. The list is fixed at
// construction and never changes during execution.
type Container interface {
	action.Action
	Actions() []action.Action
	ActionCount() int
	Action(i int) action.Action
}

type base struct {
	action.Base
	actions []action.Action
}

func newBase(meta action.Meta, defaultName string, actions []action.Action) base {
	return base{Base: action.NewBase(meta, defaultName), actions: append([]action.Action(nil), actions...)}
}

// Actions returns the configured children.
func (b base) Actions() []action.Action {
	return append([]action.Action(nil), b.actions...)
}

// ActionCount returns the number of configured children, whether or not they ran.
func (b base) ActionCount() int {
	return len(b.actions)
}

// Action returns the child at index i, or nil when i is out of range.
func (b base) Action(i int) action.Action {
	if i < 0 || i >= len(b.actions) {
		return nil
	}
	return b.actions[i]
}

// Int returns a pointer to v, for optional integer settings such as Start.
func Int(v int) *int {
	return &v
}
