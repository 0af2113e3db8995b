package testcontext

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/message"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

func TestVariableLookup(t *testing.T) {
	t.Parallel()

	tc := New()
	tc.SetVariable("greeting", "Hello")
	tc.SetVariable("count", 3)

	v, err := tc.Variable("greeting")
	require.NoError(t, err)
	require.Equal(t, "Hello", v)

	v, err = tc.Variable("count")
	require.NoError(t, err)
	require.Equal(t, "3", v)

	obj, err := tc.VariableObject("count")
	require.NoError(t, err)
	require.Equal(t, 3, obj)

	_, err = tc.Variable("missing")
	var notFound *citrineerrors.VariableNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.Name)
	require.False(t, tc.HasVariable("missing"))
}

func TestSetVariableOverwrites(t *testing.T) {
	t.Parallel()

	tc := New()
	tc.SetVariable("i", "1")
	tc.SetVariable("i", "2")

	v, err := tc.Variable("i")
	require.NoError(t, err)
	require.Equal(t, "2", v)
	require.Equal(t, []string{"i"}, tc.VariableNames())
}

func TestConcurrentVariableWritesAreVisible(t *testing.T) {
	t.Parallel()

	tc := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc.SetVariable(fmt.Sprintf("var%d", i), i)
			_, _ = tc.ReplaceDynamicContent("${" + fmt.Sprintf("var%d", i) + "}")
		}(i)
	}
	wg.Wait()

	require.Len(t, tc.Variables(), 50)
	for i := 0; i < 50; i++ {
		require.True(t, tc.HasVariable(fmt.Sprintf("var%d", i)))
	}
}

func TestMessageStoreKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	tc := New()
	first := message.New("first")
	second := message.New("second")
	tc.SaveMessage("inbound", first)
	tc.SaveMessage("outbound", second)
	tc.SaveMessage("inbound", message.New("replaced"))

	require.Equal(t, []string{"inbound", "outbound"}, tc.MessageNames())

	got, ok := tc.Message("inbound")
	require.True(t, ok)
	require.Equal(t, "replaced", got.PayloadString())

	_, ok = tc.Message("unknown")
	require.False(t, ok)
}

func TestTraceRecording(t *testing.T) {
	t.Parallel()

	tc := New()
	outer := tc.StartAction("sequential", 0)
	inner := tc.StartAction("echo", 1)
	tc.FinishAction(inner, nil, time.Millisecond)
	tc.SkipAction("sleep", 1)
	tc.FinishAction(outer, errors.New("boom"), 2*time.Millisecond)
	running := tc.StartAction("receive", 0)
	tc.FinishAction(42, nil, 0)

	trace := tc.Trace()
	require.Len(t, trace, 4)
	require.Equal(t, ActionFailed, trace[0].Status)
	require.EqualError(t, trace[0].Err, "boom")
	require.Equal(t, ActionSuccess, trace[1].Status)
	require.Equal(t, 1, trace[1].Depth)
	require.Equal(t, time.Millisecond, trace[1].Duration)
	require.Equal(t, ActionSkipped, trace[2].Status)
	require.Equal(t, ActionRunning, trace[running].Status)
}
