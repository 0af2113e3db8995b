package action

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/logger"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
)

// newBufferedContext returns a context whose logger writes JSON lines into the returned buffer.
func newBufferedContext(t *testing.T, opts ...testcontext.Option) (*testcontext.Context, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "debug", Writer: buf})
	require.NoError(t, err)
	return testcontext.New(append(opts, testcontext.WithLogger(log))...), buf
}

type funcAction struct {
	Base
	fn func(ctx context.Context, tc *testcontext.Context) error
}

func newFuncAction(name string, fn func(ctx context.Context, tc *testcontext.Context) error) *funcAction {
	return &funcAction{Base: NewBase(Meta{Name: name}, "func"), fn: fn}
}

func (f *funcAction) Execute(ctx context.Context, tc *testcontext.Context) error {
	return f.fn(ctx, tc)
}

type event struct {
	kind string
	name string
	err  error
}

type recordingListener struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingListener) ActionStarted(ctx context.Context, name string) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "start", name: name})
	return ctx
}

func (r *recordingListener) ActionFinished(_ context.Context, name string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "finish", name: name, err: err})
}
