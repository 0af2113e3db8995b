package endpoint

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/citrine/internal/message"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// recordingChannel returns a canned message and remembers the timeout it was asked to wait.
type recordingChannel struct {
	mu       sync.Mutex
	reply    *message.Message
	timeouts []time.Duration
	selected []string
}

func (r *recordingChannel) Name() string { return "recording" }

func (r *recordingChannel) Send(context.Context, *message.Message) error { return nil }

func (r *recordingChannel) Receive(_ context.Context, timeout time.Duration) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeouts = append(r.timeouts, timeout)
	if r.reply == nil {
		return nil, ErrNoMessage
	}
	return r.reply, nil
}

type recordingSelectingChannel struct {
	recordingChannel
}

func (r *recordingSelectingChannel) ReceiveSelected(ctx context.Context, selector Selector, timeout time.Duration) (*message.Message, error) {
	r.mu.Lock()
	r.selected = append(r.selected, selector.String())
	r.mu.Unlock()
	return r.Receive(ctx, timeout)
}

func helloMessage() *message.Message {
	return message.New("<TestRequest><Message>Hello World!</Message></TestRequest>")
}

func TestReceiveUsesDefaultTimeout(t *testing.T) {
	t.Parallel()

	reply := helloMessage()
	ch := &recordingChannel{reply: reply}
	ep := NewChannelEndpoint("inbound", ch, 0)

	received, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{})
	require.NoError(t, err)
	require.Equal(t, reply.Payload(), received.Payload())
	require.Equal(t, reply.ID(), received.ID())
	require.Equal(t, []time.Duration{5000 * time.Millisecond}, ch.timeouts)
}

func TestReceiveUsesEndpointTimeout(t *testing.T) {
	t.Parallel()

	ch := &recordingChannel{reply: helloMessage()}
	ep := NewChannelEndpoint("inbound", ch, 10000*time.Millisecond)

	_, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{})
	require.NoError(t, err)
	require.Equal(t, []time.Duration{10000 * time.Millisecond}, ch.timeouts)
}

func TestReceiveTimeoutOverride(t *testing.T) {
	t.Parallel()

	ch := &recordingChannel{reply: helloMessage()}
	ep := NewChannelEndpoint("inbound", ch, 10000*time.Millisecond)

	_, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{Timeout: 25000 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, []time.Duration{25000 * time.Millisecond}, ch.timeouts)
}

func TestReceiveTimeout(t *testing.T) {
	t.Parallel()

	ch := &recordingChannel{}
	ep := NewChannelEndpoint("inbound", ch, 0)

	_, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{})
	var timeoutErr *citrineerrors.ActionTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.True(t, strings.HasPrefix(err.Error(), "Action timeout while receiving message from channel"))
	require.Equal(t, []time.Duration{5000 * time.Millisecond}, ch.timeouts)
}

func TestReceiveConvertsMessage(t *testing.T) {
	t.Parallel()

	reply := helloMessage().SetHeader("Operation", "sayHello").AddHeaderData("<Header/>")
	ep := NewChannelEndpoint("inbound", &recordingChannel{reply: reply}, 0)

	received, err := ep.CreateConsumer().Receive(context.Background(), nil, ReceiveOptions{})
	require.NoError(t, err)
	require.NotSame(t, reply, received)
	require.Equal(t, "sayHello", received.Header("Operation"))
	require.Equal(t, []string{"<Header/>"}, received.HeaderData())
	require.Equal(t, reply.ID(), received.Header(message.HeaderCorrelationID))
}

func TestReceiveSelectedUnsupported(t *testing.T) {
	t.Parallel()

	ep := NewChannelEndpoint("direct", NewDirectChannel("direct", 1), 0)

	_, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{Selector: "Operation = 'sayHello'"})
	var unsupported *citrineerrors.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	require.NotEmpty(t, err.Error())
}

func TestReceiveSelectedDelegatesToChannel(t *testing.T) {
	t.Parallel()

	reply := message.New("Hello").SetHeader("Operation", "sayHello")
	ch := &recordingSelectingChannel{recordingChannel{reply: reply}}
	ep := NewChannelEndpoint("queue", ch, 0)

	received, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{Selector: "Operation = 'sayHello'", Timeout: 1500 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, "Hello", received.Payload())
	require.Equal(t, reply.ID(), received.ID())
	require.Equal(t, "sayHello", received.Header("Operation"))
	require.Equal(t, []string{"Operation = 'sayHello'"}, ch.selected)
	require.Equal(t, []time.Duration{1500 * time.Millisecond}, ch.timeouts)
}

func TestReceiveSelectedFromQueueChannel(t *testing.T) {
	t.Parallel()

	queue := NewQueueChannel("queue", 10)
	ctx := context.Background()
	require.NoError(t, queue.Send(ctx, message.New("Bye").SetHeader("Operation", "sayGoodbye")))
	require.NoError(t, queue.Send(ctx, message.New("Hello").SetHeader("Operation", "sayHello")))
	require.NoError(t, queue.Send(ctx, message.New("Hello again").SetHeader("Operation", "sayHello")))

	ep := NewChannelEndpoint("queue", queue, 0)
	received, err := ep.CreateConsumer().Receive(ctx, testcontext.New(), ReceiveOptions{Selector: "Operation = 'sayHello'"})
	require.NoError(t, err)
	require.Equal(t, "Hello", received.Payload())
	require.Equal(t, 2, queue.Len())

	received, err = ep.CreateConsumer().Receive(ctx, testcontext.New(), ReceiveOptions{})
	require.NoError(t, err)
	require.Equal(t, "Bye", received.Payload())
}

func TestReceiveSelectedNoMessageWithTimeout(t *testing.T) {
	t.Parallel()

	queue := NewQueueChannel("queue", 0)
	require.NoError(t, queue.Send(context.Background(), message.New("Bye").SetHeader("Operation", "sayGoodbye")))
	ep := NewChannelEndpoint("queue", queue, 0)

	start := time.Now()
	_, err := ep.CreateConsumer().Receive(context.Background(), testcontext.New(), ReceiveOptions{Selector: "Operation = 'sayHello'", Timeout: 50 * time.Millisecond})
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	var timeoutErr *citrineerrors.ActionTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.True(t, strings.HasPrefix(err.Error(), "Action timeout while receiving message from channel"))
	require.Equal(t, 1, queue.Len())
}

func TestProducerSendsToChannel(t *testing.T) {
	t.Parallel()

	queue := NewQueueChannel("queue", 1)
	ep := NewChannelEndpoint("queue", queue, 0)

	require.NoError(t, ep.CreateProducer().Send(context.Background(), message.New("one"), testcontext.New()))
	err := ep.CreateProducer().Send(context.Background(), message.New("two"), testcontext.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "full")
}

func TestEffectiveTimeout(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultTimeout, EffectiveTimeout(0, 0))
	require.Equal(t, 10*time.Second, EffectiveTimeout(0, 10*time.Second))
	require.Equal(t, 25*time.Second, EffectiveTimeout(25*time.Second, 10*time.Second))
}

func TestPurgeEndpoint(t *testing.T) {
	t.Parallel()

	queue := NewQueueChannel("inbound", 10)
	require.NoError(t, queue.Send(context.Background(), message.New("one")))
	require.NoError(t, queue.Send(context.Background(), message.New("two")))

	purged, err := Purge(NewChannelEndpoint("inbound", queue, 0))
	require.NoError(t, err)
	require.Equal(t, 2, purged)
	require.Equal(t, 0, queue.Len())

	_, err = Purge(NewChannelEndpoint("recording", &recordingChannel{}, 0))
	var unsupported *citrineerrors.UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
}
