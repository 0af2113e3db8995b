package testcontext

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

func TestReplaceVariables(t *testing.T) {
	t.Parallel()

	tc := New()
	tc.SetVariable("greeting", "Hello")

	out, err := tc.ReplaceDynamicContent("${greeting} Citrus!")
	require.NoError(t, err)
	require.Equal(t, "Hello Citrus!", out)
}

func TestReplaceUnknownVariableFails(t *testing.T) {
	t.Parallel()

	_, err := New().ReplaceDynamicContent("${greeting} Citrus!")
	var notFound *citrineerrors.VariableNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "greeting", notFound.Name)
}

func TestReplaceMalformedVariableFails(t *testing.T) {
	t.Parallel()

	tc := New()
	_, err := tc.ReplaceDynamicContent("${greeting")
	require.Error(t, err)

	_, err = tc.ReplaceDynamicContent("${}")
	require.Error(t, err)
}

func TestReplaceFunctions(t *testing.T) {
	t.Parallel()

	tc := New()
	tc.SetVariable("name", "citrine")

	tests := []struct {
		template string
		want     string
	}{
		{template: "citrus:upperCase('hello')", want: "HELLO"},
		{template: "citrus:concat('Hello ', ${name}, '!')", want: "Hello citrine!"},
		{template: "citrus:upperCase(citrus:concat('a', 'b'))", want: "AB"},
		{template: "x=citrus:substring('citrine', 0, 4);", want: "x=citr;"},
		{template: "citrus:stringLength('abc')", want: "3"},
		{template: "citrus:translate('a-b-c', '-', '+')", want: "a+b+c"},
		{template: "citrus:sum(1, 2, 3.5)", want: "6.5"},
		{template: "citrus:max(1, 7, 3)", want: "7"},
		{template: "citrus:absolute(-4)", want: "4"},
		{template: "mail me at citrus:lowerCase('X') or citrus: later", want: "mail me at x or citrus: later"},
		{template: "citrus:concat('a,b', 'c')", want: "a,bc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.template, func(t *testing.T) {
			got, err := tc.ReplaceDynamicContent(tt.template)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceGeneratedValues(t *testing.T) {
	t.Parallel()

	tc := New()

	out, err := tc.ReplaceDynamicContent("Today is citrus:currentDate()")
	require.NoError(t, err)
	require.Equal(t, "Today is "+time.Now().Format("02.01.2006"), out)

	id, err := tc.ReplaceDynamicContent("citrus:randomUUID()")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	n, err := tc.ReplaceDynamicContent("citrus:randomNumber(6)")
	require.NoError(t, err)
	require.Len(t, n, 6)
	require.False(t, strings.HasPrefix(n, "0"))

	s, err := tc.ReplaceDynamicContent("citrus:randomString(8)")
	require.NoError(t, err)
	require.Len(t, s, 8)
}

func TestReplaceUnknownFunctionFails(t *testing.T) {
	t.Parallel()

	_, err := New().ReplaceDynamicContent("citrus:doesNotExist()")
	var notFound *citrineerrors.FunctionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReplaceFunctionArgumentErrors(t *testing.T) {
	t.Parallel()

	tc := New()
	_, err := tc.ReplaceDynamicContent("citrus:substring('abc', 5)")
	require.Error(t, err)

	_, err = tc.ReplaceDynamicContent("citrus:upperCase('abc'")
	require.Error(t, err)
}

func TestReplaceAll(t *testing.T) {
	t.Parallel()

	tc := New()
	tc.SetVariable("op", "sayHello")

	out, err := tc.ReplaceAll(map[string]string{"Operation": "${op}", "static": "value"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Operation": "sayHello", "static": "value"}, out)

	_, err = tc.ReplaceAll(map[string]string{"broken": "${unknown}"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestCustomFunctionRegistry(t *testing.T) {
	t.Parallel()

	registry := NewFunctionRegistry()
	require.NoError(t, registry.Register("greet", func(args []string, tc *Context) (string, error) {
		return "Hello " + args[0], nil
	}))
	require.Error(t, registry.Register("greet", func([]string, *Context) (string, error) { return "", nil }))
	require.Error(t, registry.Register("nil", nil))

	tc := New(WithFunctions(registry))
	out, err := tc.ReplaceDynamicContent("citrus:greet('World')")
	require.NoError(t, err)
	require.Equal(t, "Hello World", out)
	require.Equal(t, []string{"greet"}, registry.Names())
}
