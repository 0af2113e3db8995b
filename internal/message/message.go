// Package message defines the framework message exchanged with endpoints.
package message

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// HeaderID carries the unique message id.
	HeaderID = "citrus_message_id"
	// HeaderTimestamp carries the creation time in Unix milliseconds.
	HeaderTimestamp = "citrus_message_timestamp"
	// HeaderCorrelationID links a reply to the request that caused it.
	HeaderCorrelationID = "citrus_correlation_id"
)

// Message is a payload plus headers and raw header data fragments.
type Message struct {
	payload    any
	headers    map[string]any
	headerData []string
}

// New creates a message with a fresh id and timestamp header.
func New(payload any) *Message {
	return &Message{
		payload: payload,
		headers: map[string]any{
			HeaderID:        uuid.NewString(),
			HeaderTimestamp: time.Now().UnixMilli(),
		},
	}
}

// FromHeaders builds a message around transport headers, generating an id when none is present.
func FromHeaders(payload any, headers map[string]any) *Message {
	m := &Message{payload: payload, headers: make(map[string]any, len(headers)+2)}
	for k, v := range headers {
		m.headers[k] = v
	}
	if _, ok := m.headers[HeaderID]; !ok {
		m.headers[HeaderID] = uuid.NewString()
	}
	if _, ok := m.headers[HeaderTimestamp]; !ok {
		m.headers[HeaderTimestamp] = time.Now().UnixMilli()
	}
	return m
}

// ID returns the message id header.
func (m *Message) ID() string {
	id, _ := m.headers[HeaderID].(string)
	return id
}

// Payload returns the raw payload value.
func (m *Message) Payload() any {
	return m.payload
}

// PayloadString renders the payload as text. Structured payloads are encoded as JSON.
func (m *Message) PayloadString() string {
	switch p := m.payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case []byte:
		return string(p)
	case fmt.Stringer:
		return p.String()
	case int:
		return strconv.Itoa(p)
	case int64:
		return strconv.FormatInt(p, 10)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(p)
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprintf("%v", p)
		}
		return string(data)
	}
}

// SetPayload replaces the payload.
func (m *Message) SetPayload(payload any) *Message {
	m.payload = payload
	return m
}

// Header returns a header value or nil.
func (m *Message) Header(name string) any {
	return m.headers[name]
}

// HeaderString returns a header value rendered as text and whether it was present.
func (m *Message) HeaderString(name string) (string, bool) {
	v, ok := m.headers[name]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// SetHeader sets a header value.
func (m *Message) SetHeader(name string, value any) *Message {
	if m.headers == nil {
		m.headers = make(map[string]any)
	}
	m.headers[name] = value
	return m
}

// AddHeaderData appends a raw header fragment.
func (m *Message) AddHeaderData(data string) *Message {
	m.headerData = append(m.headerData, data)
	return m
}

// HeaderData returns the raw header fragments in insertion order.
func (m *Message) HeaderData() []string {
	return append([]string(nil), m.headerData...)
}

// CopyHeaders returns a copy of the header map.
func (m *Message) CopyHeaders() map[string]any {
	out := make(map[string]any, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// Copy returns a deep copy of headers and header data with the same payload reference.
func (m *Message) Copy() *Message {
	return &Message{
		payload:    m.payload,
		headers:    m.CopyHeaders(),
		headerData: m.HeaderData(),
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("Message[id=%s, payload=%s, headers=%v]", m.ID(), m.PayloadString(), m.headers)
}
