package loader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/config"
	"github.com/alexisbeaulieu97/citrine/internal/container"
	"github.com/alexisbeaulieu97/citrine/internal/endpoint"
	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/runner"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

const suiteDoc = `version: "1.0.0"
name: greeting-suite
settings:
  timeout: 5s
  default_receive_timeout: 2s
variables:
  greeting: Hello
endpoints:
  - name: inbound
    type: queue
  - name: direct
    type: direct
    capacity: 4
    timeout: 250ms
tests:
  - name: round-trip
    variables:
      user: citrine
    actions:
      - type: send
        endpoint: inbound
        payload: '{"user":"${user}","greeting":"${greeting}"}'
        headers:
          operation: greet
      - type: receive
        endpoint: inbound
        selector: "operation = 'greet'"
        payload: '{"greeting":"Hello","user":"citrine"}'
        extract_paths:
          $.user: received
      - type: conditional
        expression: "${received} = citrine"
        actions:
          - type: create-variables
            variables:
              matched: "yes"
      - type: iterate
        index: k
        condition: k lt= 3
        actions:
          - type: create-variables
            variables:
              last: "${k}"
      - type: fail
        disabled: true
    finally:
      - type: purge-endpoint
        endpoints: [inbound, direct]
  - name: failing
    actions:
      - type: parallel
        actions:
          - type: echo
            message: "${greeting}"
          - type: fail
            message: "expected failure"
`

func load(t *testing.T, doc string) *Loaded {
	t.Helper()

	cfg, err := config.Parse("suite.yaml", []byte(doc))
	require.NoError(t, err)
	loaded, err := Load(cfg)
	require.NoError(t, err)
	return loaded
}

func TestLoadBuildsSuite(t *testing.T) {
	t.Parallel()

	loaded := load(t, suiteDoc)
	require.Equal(t, 5*time.Second, loaded.TestTimeout)
	require.Equal(t, []string{"direct", "inbound"}, loaded.Endpoints.Names())

	inbound, err := loaded.Endpoints.Get("inbound")
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, inbound.Timeout())
	direct, err := loaded.Endpoints.Get("direct")
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, direct.Timeout())
	require.IsType(t, &endpoint.DirectChannel{}, direct.(*endpoint.ChannelEndpoint).Channel())

	suite := loaded.Suite
	require.Equal(t, "greeting-suite", suite.Name)
	require.Len(t, suite.Variables, 1)
	require.Len(t, suite.Tests, 2)

	first := suite.Tests[0]
	require.Equal(t, 5, first.ActionCount())
	require.Len(t, first.Finally(), 1)

	iterate, ok := first.Actions()[3].(*container.Iterate)
	require.True(t, ok)
	require.Equal(t, "k", iterate.IndexName())
	require.Equal(t, "k lt= 3", iterate.Condition())
	require.True(t, first.Actions()[4].Disabled())
}

func TestLoadedSuiteRuns(t *testing.T) {
	t.Parallel()

	loaded := load(t, suiteDoc)
	result := runner.New(runner.WithTestTimeout(loaded.TestTimeout)).Run(context.Background(), loaded.Suite)

	require.Len(t, result.Tests, 2)
	require.Equal(t, model.StatusSuccess, result.Tests[0].Status, "%v", result.Tests[0].Error)
	require.Equal(t, model.StatusFailed, result.Tests[1].Status)
	require.ErrorContains(t, result.Tests[1].Error, "expected failure")
	require.False(t, result.Success())
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Version: "1.0",
		Name:    "broken",
		Tests: []config.Test{{
			Name:    "only",
			Actions: []config.Action{{Type: "receive", Receive: &config.ReceiveAction{Endpoint: "missing"}}},
		}},
	}
	_, err := Load(cfg)
	var validationErr *citrineerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "tests[0].actions[0].endpoint", validationErr.Field)
}

func TestLoadRejectsMalformedIterateIndex(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Version: "1.0",
		Name:    "broken",
		Tests: []config.Test{{
			Name: "only",
			Actions: []config.Action{{
				Type:      "iterate",
				Container: &config.ContainerAction{IndexName: "bad index", Condition: "i lt 2"},
			}},
		}},
	}
	_, err := Load(cfg)
	require.Error(t, err)
}
