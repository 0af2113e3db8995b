package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/message"
)

// DirectChannel is a buffered FIFO channel without selector support.
type DirectChannel struct {
	name string
	c    chan *message.Message
}

// NewDirectChannel creates a direct channel with the given buffer size (minimum 1).
func NewDirectChannel(name string, capacity int) *DirectChannel {
	if capacity <= 0 {
		capacity = 1
	}
	return &DirectChannel{name: name, c: make(chan *message.Message, capacity)}
}

// Name implements Channel.
func (d *DirectChannel) Name() string {
	return d.name
}

// Send pushes msg without blocking.
func (d *DirectChannel) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case d.c <- msg:
		return nil
	default:
		return fmt.Errorf("channel '%s' is full", d.name)
	}
}

// Receive implements Channel.
func (d *DirectChannel) Receive(ctx context.Context, timeout time.Duration) (*message.Message, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case msg := <-d.c:
		return msg, nil
	case <-deadline.C:
		return nil, ErrNoMessage
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Purge drops every buffered message.
func (d *DirectChannel) Purge() int {
	n := 0
	for {
		select {
		case <-d.c:
			n++
		default:
			return n
		}
	}
}
