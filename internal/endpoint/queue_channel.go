package endpoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/citrine/internal/message"
)

// QueueChannel is a bounded in-memory queue that supports selective receive.
type QueueChannel struct {
	name     string
	capacity int

	lock    sync.Mutex
	pending []*message.Message
	notify  chan struct{}
}

// NewQueueChannel creates a queue channel; capacity <= 0 means unbounded.
func NewQueueChannel(name string, capacity int) *QueueChannel {
	return &QueueChannel{name: name, capacity: capacity, notify: make(chan struct{})}
}

// Name implements Channel.
func (q *QueueChannel) Name() string {
	return q.name
}

// Send enqueues msg and wakes up waiting receivers.
func (q *QueueChannel) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.lock.Lock()
	defer q.lock.Unlock()
	if q.capacity > 0 && len(q.pending) >= q.capacity {
		return fmt.Errorf("channel '%s' is full (capacity %d)", q.name, q.capacity)
	}
	q.pending = append(q.pending, msg)
	close(q.notify)
	q.notify = make(chan struct{})
	return nil
}

// Receive implements Channel.
func (q *QueueChannel) Receive(ctx context.Context, timeout time.Duration) (*message.Message, error) {
	return q.receive(ctx, nil, timeout)
}

// ReceiveSelected implements SelectingChannel; it returns the oldest message accepted by selector.
func (q *QueueChannel) ReceiveSelected(ctx context.Context, selector Selector, timeout time.Duration) (*message.Message, error) {
	return q.receive(ctx, selector, timeout)
}

// Purge drops every pending message and returns how many were removed.
func (q *QueueChannel) Purge() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	n := len(q.pending)
	q.pending = nil
	return n
}

// Len returns the number of pending messages.
func (q *QueueChannel) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.pending)
}

func (q *QueueChannel) receive(ctx context.Context, selector Selector, timeout time.Duration) (*message.Message, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.lock.Lock()
		for i, msg := range q.pending {
			if selector == nil || selector.Accept(msg) {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				q.lock.Unlock()
				return msg, nil
			}
		}
		wake := q.notify
		q.lock.Unlock()

		select {
		case <-wake:
		case <-deadline.C:
			return nil, ErrNoMessage
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
