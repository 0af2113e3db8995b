package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(NewChannelEndpoint("b", NewQueueChannel("b", 0), 0)))
	require.NoError(t, r.Register(NewChannelEndpoint("a", NewDirectChannel("a", 1), 0)))

	err := r.Register(NewChannelEndpoint("a", NewDirectChannel("a", 1), 0))
	var validationErr *citrineerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Error(t, r.Register(nil))

	ep, err := r.Get("b")
	require.NoError(t, err)
	require.Equal(t, "b", ep.Name())

	_, err = r.Get("missing")
	require.Error(t, err)

	require.Equal(t, []string{"a", "b"}, r.Names())
}
