// Package endpoint defines the endpoint, consumer and producer contract used by send and
// receive actions, plus in-memory channel endpoints that implement it.
package endpoint

import (
	"context"
	"errors"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/message"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// DefaultTimeout applies when neither the receive call nor the endpoint sets a timeout.
const DefaultTimeout = 5000 * time.Millisecond

// ErrNoMessage is returned by channels when the receive window elapses without a message.
var ErrNoMessage = errors.New("no message available")

// Endpoint is a named, long-lived source and sink of messages.
type Endpoint interface {
	Name() string
	Timeout() time.Duration
	CreateConsumer() Consumer
	CreateProducer() Producer
}

// ReceiveOptions customise a single receive call. Zero values mean "use the default".
type ReceiveOptions struct {
	Selector string
	Timeout  time.Duration
}

// Consumer receives messages from an endpoint.
type Consumer interface {
	Receive(ctx context.Context, tc *testcontext.Context, opts ReceiveOptions) (*message.Message, error)
}

// Producer sends messages to an endpoint.
type Producer interface {
	Send(ctx context.Context, msg *message.Message, tc *testcontext.Context) error
}

// Channel is a pollable message channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg *message.Message) error
	// Receive blocks up to timeout and returns ErrNoMessage when nothing arrived.
	Receive(ctx context.Context, timeout time.Duration) (*message.Message, error)
}

// SelectingChannel is a channel that can filter pending messages natively.
type SelectingChannel interface {
	Channel
	ReceiveSelected(ctx context.Context, selector Selector, timeout time.Duration) (*message.Message, error)
}

// Purger is implemented by channels that can drop pending messages.
type Purger interface {
	Purge() int
}

// EffectiveTimeout picks the per-call override, then the endpoint timeout, then DefaultTimeout.
func EffectiveTimeout(override, configured time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if configured > 0 {
		return configured
	}
	return DefaultTimeout
}

// Purge drops pending messages from ep when its transport supports it.
func Purge(ep Endpoint) (int, error) {
	if p, ok := ep.(interface{ Purge() (int, error) }); ok {
		return p.Purge()
	}
	return 0, citrineerrors.NewUnsupportedOperationError("purge", ep.Name())
}
