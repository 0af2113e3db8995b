package testcontext

import (
	"fmt"
	"strings"
)

const (
	variablePrefix = "${"
	variableSuffix = "}"
	functionPrefix = "citrus:"
)

// ReplaceDynamicContent resolves every ${name} placeholder and citrus:fn(args) call in
// template. Variables are substituted first, then functions; function arguments are
// resolved recursively. Any unresolved reference fails the whole substitution.
func (c *Context) ReplaceDynamicContent(template string) (string, error) {
	resolved, err := c.replaceVariables(template)
	if err != nil {
		return "", err
	}
	return c.replaceFunctions(resolved)
}

// ReplaceAll resolves every value of a string map.
func (c *Context) ReplaceAll(values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		resolved, err := c.ReplaceDynamicContent(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

func (c *Context) replaceVariables(template string) (string, error) {
	if !strings.Contains(template, variablePrefix) {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, variablePrefix)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], variableSuffix)
		if end < 0 {
			return "", fmt.Errorf("unterminated variable expression in %q", template)
		}
		end += start

		name := rest[start+len(variablePrefix) : end]
		if name == "" {
			return "", fmt.Errorf("empty variable expression in %q", template)
		}
		value, err := c.Variable(name)
		if err != nil {
			return "", err
		}

		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[end+len(variableSuffix):]
	}
	return b.String(), nil
}

func (c *Context) replaceFunctions(template string) (string, error) {
	if !strings.Contains(template, functionPrefix) {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, functionPrefix)
		if start < 0 {
			b.WriteString(rest)
			break
		}

		nameStart := start + len(functionPrefix)
		open := nameStart
		for open < len(rest) && isNameChar(rest[open]) {
			open++
		}
		if open == nameStart || open >= len(rest) || rest[open] != '(' {
			// not a call, keep the text as is
			b.WriteString(rest[:nameStart])
			rest = rest[nameStart:]
			continue
		}

		closing, err := matchingParen(rest, open)
		if err != nil {
			return "", fmt.Errorf("%w in %q", err, template)
		}

		name := rest[nameStart:open]
		args, err := c.resolveArguments(rest[open+1 : closing])
		if err != nil {
			return "", err
		}
		result, err := c.functions.Call(name, args, c)
		if err != nil {
			return "", err
		}

		b.WriteString(rest[:start])
		b.WriteString(result)
		rest = rest[closing+1:]
	}
	return b.String(), nil
}

func (c *Context) resolveArguments(raw string) ([]string, error) {
	parts := splitArguments(raw)
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if unquoted, ok := unquote(part); ok {
			args = append(args, unquoted)
			continue
		}
		resolved, err := c.replaceFunctions(part)
		if err != nil {
			return nil, err
		}
		args = append(args, resolved)
	}
	return args, nil
}

func isNameChar(ch byte) bool {
	return ch == '_' || ch == '-' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func matchingParen(s string, open int) (int, error) {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses in function call")
}

// splitArguments splits on commas outside quotes and nested calls.
func splitArguments(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, raw[last:i])
			last = i + 1
		}
	}
	return append(parts, raw[last:])
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
