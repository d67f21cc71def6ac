// Package memory is an in-process broker with the queue semantics relay
// relies on: durable declaration checks, default-exchange routing, manual
// acknowledgement with a prefetch of one, and requeue of unacknowledged
// messages when a consumer goes away.
package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/blame"
)

// Address is reported by the broker as its location.
const Address = "memory://local"

var (
	// ErrPreconditionFailed mirrors a broker refusing a redeclaration with different properties.
	ErrPreconditionFailed = errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'")
	// ErrChannelClosed is returned for operations on a closed channel.
	ErrChannelClosed = errors.New("channel/connection is not open")
	// ErrUnknownDeliveryTag is returned when acking a delivery the channel no longer owns.
	ErrUnknownDeliveryTag = errors.New("PRECONDITION_FAILED - unknown delivery tag")
)

// QueueStats is a snapshot of one queue.
type QueueStats struct {
	Ready     int
	Unacked   int
	Consumers int
	Published int64
	Acked     int64
	Delivered int64
}

// Broker holds all queues. The zero value is not usable; use New.
type Broker struct {
	mu      sync.Mutex
	queues  map[string]*queue
	open    atomic.Int64
	dropped atomic.Int64
	tags    atomic.Uint64

	dialErr    atomic.Pointer[error]
	publishErr atomic.Pointer[error]
}

// New returns an empty broker.
func New() *Broker {
	return &Broker{queues: make(map[string]*queue)}
}

// Address implements events.Dialer.
func (b *Broker) Address() string {
	return Address
}

// Dial opens a new connection with a single channel.
func (b *Broker) Dial(ctx context.Context) (events.Channel, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.BrokerUnreachableError(Address, err)
	}
	if errp := b.dialErr.Load(); errp != nil {
		return nil, blame.BrokerUnreachableError(Address, *errp)
	}
	b.open.Add(1)
	return &channel{broker: b, consumers: map[*consumer]struct{}{}}, nil
}

// OpenChannels returns the number of channels that have not been closed.
func (b *Broker) OpenChannels() int {
	return int(b.open.Load())
}

// Dropped counts messages published to queues that did not exist.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

// FailDials makes every following Dial fail with err; nil restores dialing.
func (b *Broker) FailDials(err error) {
	if err == nil {
		b.dialErr.Store(nil)
		return
	}
	b.dialErr.Store(&err)
}

// FailPublishes makes every following Publish fail with err; nil restores publishing.
func (b *Broker) FailPublishes(err error) {
	if err == nil {
		b.publishErr.Store(nil)
		return
	}
	b.publishErr.Store(&err)
}

// DeclareTransient declares a non-durable queue, which a later durable
// declaration of the same name will conflict with.
func (b *Broker) DeclareTransient(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[name]; !ok {
		b.queues[name] = newQueue(name, false)
	}
}

// Inject publishes a message without a channel, as another producer would.
// It returns false when the queue does not exist and the message was dropped.
func (b *Broker) Inject(queueName string, msg events.Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enqueueLocked(queueName, msg)
}

// Stats returns a snapshot of queueName; ok is false for unknown queues.
func (b *Broker) Stats(queueName string) (QueueStats, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queueName]
	if !ok {
		return QueueStats{}, false
	}
	stats := QueueStats{
		Ready:     len(q.ready),
		Consumers: len(q.consumers),
		Published: q.published,
		Acked:     q.acked,
		Delivered: q.delivered,
	}
	for _, c := range q.consumers {
		if c.inflight != nil {
			stats.Unacked++
		}
	}
	return stats, true
}

// Drain removes and returns every ready message of queueName.
func (b *Broker) Drain(queueName string) []events.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[queueName]
	if !ok {
		return nil
	}
	out := make([]events.Message, 0, len(q.ready))
	for _, m := range q.ready {
		out = append(out, m.msg)
	}
	q.ready = nil
	return out
}

func (b *Broker) enqueueLocked(queueName string, msg events.Message) bool {
	q, ok := b.queues[queueName]
	if !ok {
		b.dropped.Add(1)
		return false
	}
	q.published++
	q.ready = append(q.ready, &message{msg: msg, tag: b.tags.Add(1)})
	q.dispatchLocked()
	return true
}

type message struct {
	msg         events.Message
	tag         uint64
	redelivered bool
}

type queue struct {
	name      string
	durable   bool
	ready     []*message
	consumers []*consumer
	next      int
	published int64
	acked     int64
	delivered int64
}

func newQueue(name string, durable bool) *queue {
	return &queue{name: name, durable: durable}
}

// dispatchLocked hands ready messages to idle consumers in round-robin order.
func (q *queue) dispatchLocked() {
	for len(q.ready) > 0 {
		c := q.nextIdleLocked()
		if c == nil {
			return
		}
		m := q.ready[0]
		q.ready = q.ready[1:]
		c.inflight = m
		q.delivered++
		c.deliveries <- events.NewDelivery(q.name, m.msg, m.redelivered, c.ackFunc(m))
	}
}

func (q *queue) nextIdleLocked() *consumer {
	n := len(q.consumers)
	for i := 0; i < n; i++ {
		c := q.consumers[(q.next+i)%n]
		if c.inflight == nil {
			q.next = (q.next + i + 1) % n
			return c
		}
	}
	return nil
}

// requeueLocked puts m back at the head of the queue, flagged as redelivered.
func (q *queue) requeueLocked(m *message) {
	m.redelivered = true
	q.ready = append([]*message{m}, q.ready...)
}

func (q *queue) removeConsumerLocked(c *consumer) {
	for i, existing := range q.consumers {
		if existing == c {
			q.consumers = append(q.consumers[:i], q.consumers[i+1:]...)
			if q.next > i {
				q.next--
			}
			if len(q.consumers) > 0 {
				q.next %= len(q.consumers)
			} else {
				q.next = 0
			}
			return
		}
	}
}
