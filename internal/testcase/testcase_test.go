package testcase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/action"
	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

type stubAction struct {
	action.Base
	ran bool
	err error
}

func stub(name string, err error) *stubAction {
	return &stubAction{Base: action.NewBase(action.Meta{Name: name}, "stub"), err: err}
}

func (s *stubAction) Execute(context.Context, *testcontext.Context) error {
	s.ran = true
	return s.err
}

func TestRunSucceeds(t *testing.T) {
	t.Parallel()

	echo, err := action.NewEcho(action.EchoConfig{Message: "${greeting} ${user}"})
	require.NoError(t, err)

	tcase, err := New(Config{
		Name: "say-hello",
		Variables: []action.Variable{
			{Name: "greeting", Value: "Hello"},
			{Name: "user", Value: "citrus:upperCase('${greeting}')"},
		},
		Actions: []action.Action{echo},
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusCreated, tcase.Status())

	tc := testcontext.New()
	result := tcase.Run(context.Background(), tc)
	require.NoError(t, result.Error)
	require.Equal(t, model.StatusSuccess, result.Status)
	require.Equal(t, model.StatusSuccess, tcase.Status())
	require.Len(t, result.Trace, 1)

	name, err := tc.Variable(testcontext.TestNameVariable)
	require.NoError(t, err)
	require.Equal(t, "say-hello", name)

	user, err := tc.Variable("user")
	require.NoError(t, err)
	require.Equal(t, "HELLO", user)
}

func TestRunStopsAtFirstFailureAndRunsFinally(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	first := stub("first", nil)
	failing := stub("failing", boom)
	skipped := stub("skipped", nil)
	cleanup := stub("cleanup", nil)

	tcase, err := New(Config{
		Name:    "failing-test",
		Actions: []action.Action{first, failing, skipped},
		Finally: []action.Action{cleanup},
	})
	require.NoError(t, err)

	result := tcase.Run(context.Background(), testcontext.New())
	require.Equal(t, model.StatusFailed, result.Status)
	require.ErrorIs(t, result.Error, boom)
	require.True(t, first.ran)
	require.False(t, skipped.ran)
	require.True(t, cleanup.ran)

	var names []string
	for _, record := range result.Trace {
		names = append(names, record.Name)
	}
	require.Equal(t, []string{"first", "failing", "cleanup"}, names)
	require.Equal(t, testcontext.ActionFailed, result.Trace[1].Status)
}

func TestOriginalFailureWinsOverFinallyFailure(t *testing.T) {
	t.Parallel()

	original := errors.New("original")
	cleanupErr := errors.New("cleanup failed")
	second := stub("second-cleanup", nil)

	tcase, err := New(Config{
		Name:    "both-fail",
		Actions: []action.Action{stub("failing", original)},
		Finally: []action.Action{stub("cleanup", cleanupErr), second},
	})
	require.NoError(t, err)

	result := tcase.Run(context.Background(), testcontext.New())
	require.ErrorIs(t, result.Error, original)
	require.NotErrorIs(t, result.Error, cleanupErr)
	require.True(t, second.ran)
}

func TestFinallyFailureFailsPassingTest(t *testing.T) {
	t.Parallel()

	cleanupErr := errors.New("cleanup failed")
	tcase, err := New(Config{
		Name:    "cleanup-fails",
		Actions: []action.Action{stub("ok", nil)},
		Finally: []action.Action{stub("cleanup", cleanupErr)},
	})
	require.NoError(t, err)

	result := tcase.Run(context.Background(), testcontext.New())
	require.Equal(t, model.StatusFailed, result.Status)
	require.ErrorIs(t, result.Error, cleanupErr)
}

func TestUnresolvedVariableFailsBeforeActions(t *testing.T) {
	t.Parallel()

	first := stub("first", nil)
	tcase, err := New(Config{
		Name:      "bad-variable",
		Variables: []action.Variable{{Name: "x", Value: "${missing}"}},
		Actions:   []action.Action{first},
	})
	require.NoError(t, err)

	result := tcase.Run(context.Background(), testcontext.New())
	var notFound *citrineerrors.VariableNotFoundError
	require.ErrorAs(t, result.Error, &notFound)
	require.False(t, first.ran)
}

func TestNewRequiresName(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	var validationErr *citrineerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
