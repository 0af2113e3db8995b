package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

func TestNewBaseDefaultsName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "echo", NewBase(Meta{}, "echo").Name())

	b := NewBase(Meta{Name: "greet", Description: "says hello", Disabled: true}, "echo")
	require.Equal(t, "greet", b.Name())
	require.Equal(t, "says hello", b.Description())
	require.True(t, b.Disabled())
}

func TestRunRecordsTraceAndNotifiesListeners(t *testing.T) {
	t.Parallel()

	listener := &recordingListener{}
	tc := testcontext.New(testcontext.WithListeners(listener))

	inner := newFuncAction("inner", func(context.Context, *testcontext.Context) error { return nil })
	outer := newFuncAction("outer", func(ctx context.Context, tc *testcontext.Context) error {
		return Run(ctx, tc, inner)
	})

	require.NoError(t, Run(context.Background(), tc, outer))

	trace := tc.Trace()
	require.Len(t, trace, 2)
	require.Equal(t, "outer", trace[0].Name)
	require.Equal(t, 0, trace[0].Depth)
	require.Equal(t, "inner", trace[1].Name)
	require.Equal(t, 1, trace[1].Depth)
	require.Equal(t, testcontext.ActionSuccess, trace[0].Status)

	require.Equal(t, []event{
		{kind: "start", name: "outer"},
		{kind: "start", name: "inner"},
		{kind: "finish", name: "inner"},
		{kind: "finish", name: "outer"},
	}, listener.events)
}

func TestRunWrapsFailuresOnce(t *testing.T) {
	t.Parallel()

	tc := testcontext.New()
	boom := errors.New("boom")
	inner := newFuncAction("inner", func(context.Context, *testcontext.Context) error { return boom })
	outer := newFuncAction("outer", func(ctx context.Context, tc *testcontext.Context) error {
		return Run(ctx, tc, inner)
	})

	err := Run(context.Background(), tc, outer)
	require.ErrorIs(t, err, boom)

	var execErr *citrineerrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "inner", execErr.Action)

	trace := tc.Trace()
	require.Equal(t, testcontext.ActionFailed, trace[0].Status)
	require.Equal(t, testcontext.ActionFailed, trace[1].Status)
}

func TestRunSkipsDisabledActions(t *testing.T) {
	t.Parallel()

	tc := testcontext.New()
	called := false
	a := &funcAction{
		Base: NewBase(Meta{Name: "off", Disabled: true}, "func"),
		fn: func(context.Context, *testcontext.Context) error {
			called = true
			return nil
		},
	}

	require.NoError(t, Run(context.Background(), tc, a))
	require.False(t, called)
	require.Equal(t, testcontext.ActionSkipped, tc.Trace()[0].Status)
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	a := newFuncAction("late", func(context.Context, *testcontext.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, Run(ctx, testcontext.New(), a), context.Canceled)
	require.False(t, called)
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	tc := testcontext.New()
	var ran []string
	mk := func(name string, err error) Action {
		return newFuncAction(name, func(context.Context, *testcontext.Context) error {
			ran = append(ran, name)
			return err
		})
	}

	err := RunAll(context.Background(), tc, []Action{mk("a", nil), mk("b", errors.New("b failed")), mk("c", nil)})
	require.Error(t, err)
	require.Equal(t, []string{"a", "b"}, ran)
}
