package endpoint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/citrine/internal/message"
)

// Selector decides whether a pending message should be handed to a receiver.
type Selector interface {
	Accept(msg *message.Message) bool
	String() string
}

// HeaderMatchingSelector accepts messages whose headers equal every expected value.
type HeaderMatchingSelector struct {
	source   string
	expected map[string]string
}

var andSplitter = regexp.MustCompile(`(?i)\s+and\s+`)

// ParseSelector parses expressions such as "Operation = 'sayHello' AND version = '2'".
func ParseSelector(expression string) (*HeaderMatchingSelector, error) {
	expected := make(map[string]string)
	for _, term := range andSplitter.Split(strings.TrimSpace(expression), -1) {
		key, value, ok := strings.Cut(term, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid selector term %q in %q", term, expression)
		}
		if len(value) >= 2 && (value[0] == '\'' || value[0] == '"') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		expected[key] = value
	}
	return &HeaderMatchingSelector{source: expression, expected: expected}, nil
}

// Accept implements Selector.
func (s *HeaderMatchingSelector) Accept(msg *message.Message) bool {
	for key, want := range s.expected {
		got, ok := msg.HeaderString(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (s *HeaderMatchingSelector) String() string {
	return s.source
}
