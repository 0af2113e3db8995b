package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid suite", func(t *testing.T) {
		t.Parallel()

		root := newRootCmd()
		buf := &bytes.Buffer{}
		root.SetOut(buf)
		root.SetArgs([]string{"validate", "-c", writeSuite(t, passingSuite)})

		require.NoError(t, root.Execute())
		require.Contains(t, buf.String(), "Suite cli-suite is valid: 2 tests, 1 endpoints")
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		t.Parallel()

		doc := `version: "1.0.0"
name: bad
tests:
  - name: only
    actions:
      - type: send
        endpoint: nowhere
`
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"validate", "--config", writeSuite(t, doc)})

		err := root.Execute()
		var validationErr *citrineerrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Contains(t, err.Error(), "nowhere")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"validate", "-c", "does-not-exist.yaml"})

		require.ErrorContains(t, root.Execute(), "suite file does not exist")
	})
}
