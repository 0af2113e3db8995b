package container

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
)

type stubAction struct {
	action.Base
	calls atomic.Int32
	fn    func(ctx context.Context, tc *testcontext.Context) error
}

func newStub(name string, fn func(ctx context.Context, tc *testcontext.Context) error) *stubAction {
	return &stubAction{Base: action.NewBase(action.Meta{Name: name}, "stub"), fn: fn}
}

func succeed(name string) *stubAction {
	return newStub(name, nil)
}

func (s *stubAction) Execute(ctx context.Context, tc *testcontext.Context) error {
	s.calls.Add(1)
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, tc)
}

func noSleep() *time.Duration {
	d := time.Duration(0)
	return &d
}
