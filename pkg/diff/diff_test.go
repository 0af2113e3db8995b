package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloads_Identical(t *testing.T) {
	t.Parallel()

	require.Empty(t, Payloads("<Hello/>", "<Hello/>"))
}

func TestPayloads_SingleLineChange(t *testing.T) {
	t.Parallel()

	result := Payloads("line1\nline2\nline3\n", "line1\nmodified\nline3\n")

	require.True(t, strings.HasPrefix(result, "--- expected\n+++ received\n"))
	require.Contains(t, result, "-line2\n")
	require.Contains(t, result, "+modified\n")
	require.Contains(t, result, " line1\n")
	require.Contains(t, result, " line3\n")
}

func TestPayloads_SingleLinePayload(t *testing.T) {
	t.Parallel()

	result := Payloads("Hello Citrus!", "Hello World!")
	require.Contains(t, result, "-Hello Citrus!\n")
	require.Contains(t, result, "+Hello World!\n")
}

func TestPayloads_Truncates(t *testing.T) {
	t.Parallel()

	var expected, actual strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&expected, "a%d\n", i)
		fmt.Fprintf(&actual, "b%d\n", i)
	}

	result := Payloads(expected.String(), actual.String())
	require.Contains(t, result, truncateMessage)
	require.LessOrEqual(t, strings.Count(result, "\n"), maxDiffLines+3)
}
