package endpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/message"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// ChannelEndpoint exposes a Channel through the Endpoint contract.
type ChannelEndpoint struct {
	name    string
	channel Channel
	timeout time.Duration
}

// NewChannelEndpoint binds channel to an endpoint name. A zero timeout selects DefaultTimeout.
func NewChannelEndpoint(name string, channel Channel, timeout time.Duration) *ChannelEndpoint {
	return &ChannelEndpoint{name: name, channel: channel, timeout: timeout}
}

// Name implements Endpoint.
func (e *ChannelEndpoint) Name() string {
	return e.name
}

// Timeout implements Endpoint.
func (e *ChannelEndpoint) Timeout() time.Duration {
	return e.timeout
}

// Channel returns the underlying channel.
func (e *ChannelEndpoint) Channel() Channel {
	return e.channel
}

// CreateConsumer implements Endpoint.
func (e *ChannelEndpoint) CreateConsumer() Consumer {
	return &ChannelConsumer{endpoint: e}
}

// CreateProducer implements Endpoint.
func (e *ChannelEndpoint) CreateProducer() Producer {
	return &ChannelProducer{endpoint: e}
}

// ChannelConsumer receives from a channel endpoint.
type ChannelConsumer struct {
	endpoint *ChannelEndpoint
}

// Receive waits for a message using the effective timeout. Selector based receives require
// a SelectingChannel; other channels fail with an unsupported operation error.
func (c *ChannelConsumer) Receive(ctx context.Context, tc *testcontext.Context, opts ReceiveOptions) (*message.Message, error) {
	channel := c.endpoint.channel
	timeout := EffectiveTimeout(opts.Timeout, c.endpoint.timeout)

	var (
		received *message.Message
		err      error
	)
	if opts.Selector == "" {
		received, err = channel.Receive(ctx, timeout)
	} else {
		selecting, ok := channel.(SelectingChannel)
		if !ok {
			return nil, citrineerrors.NewUnsupportedOperationError("selective receive", channel.Name())
		}
		selector, parseErr := ParseSelector(opts.Selector)
		if parseErr != nil {
			return nil, parseErr
		}
		received, err = selecting.ReceiveSelected(ctx, selector, timeout)
	}

	if errors.Is(err, ErrNoMessage) {
		return nil, citrineerrors.NewActionTimeoutError(channel.Name(), timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("receive from channel '%s': %w", channel.Name(), err)
	}

	if tc != nil {
		tc.Logger().WithFields(map[string]any{"endpoint": c.endpoint.name, "message_id": received.ID()}).
			Debug("received message")
	}
	return convert(received), nil
}

func convert(in *message.Message) *message.Message {
	out := message.FromHeaders(in.Payload(), in.CopyHeaders())
	for _, data := range in.HeaderData() {
		out.AddHeaderData(data)
	}
	if _, ok := out.HeaderString(message.HeaderCorrelationID); !ok {
		out.SetHeader(message.HeaderCorrelationID, out.ID())
	}
	return out
}

// ChannelProducer sends to a channel endpoint.
type ChannelProducer struct {
	endpoint *ChannelEndpoint
}

// Send implements Producer.
func (p *ChannelProducer) Send(ctx context.Context, msg *message.Message, tc *testcontext.Context) error {
	if err := p.endpoint.channel.Send(ctx, msg); err != nil {
		return fmt.Errorf("send to channel '%s': %w", p.endpoint.channel.Name(), err)
	}
	if tc != nil {
		tc.Logger().WithFields(map[string]any{"endpoint": p.endpoint.name, "message_id": msg.ID()}).
			Debug("sent message")
	}
	return nil
}

// Purge drops the pending messages of the endpoint's channel.
func (e *ChannelEndpoint) Purge() (int, error) {
	purger, ok := e.channel.(Purger)
	if !ok {
		return 0, citrineerrors.NewUnsupportedOperationError("purge", e.channel.Name())
	}
	return purger.Purge(), nil
}
