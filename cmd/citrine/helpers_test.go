package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingSuite = `version: "1.0.0"
name: cli-suite
variables:
  greeting: Hello
endpoints:
  - name: inbound
    type: queue
    timeout: 500ms
tests:
  - name: round-trip
    actions:
      - type: send
        endpoint: inbound
        payload: "${greeting} Citrus!"
      - type: receive
        endpoint: inbound
        payload: "Hello Citrus!"
  - name: echo-only
    actions:
      - type: echo
        message: "${greeting}"
`

const failingSuite = `version: "1.0.0"
name: failing-suite
tests:
  - name: broken
    actions:
      - type: fail
        message: "stop here"
`

func writeSuite(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
