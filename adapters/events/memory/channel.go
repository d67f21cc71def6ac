package memory

import (
	"context"
	"sync"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/helpers"
)

type channel struct {
	broker    *Broker
	closed    bool
	consumers map[*consumer]struct{}
}

func (ch *channel) DeclareQueue(ctx context.Context, name string) blame.Blame {
	if err := ctx.Err(); err != nil {
		return blame.QueueDeclareError(name, err)
	}
	b := ch.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.closed {
		return blame.QueueDeclareError(name, ErrChannelClosed)
	}
	q, ok := b.queues[name]
	if !ok {
		b.queues[name] = newQueue(name, true)
		return nil
	}
	if !q.durable {
		return blame.QueueDeclareError(name, ErrPreconditionFailed)
	}
	return nil
}

func (ch *channel) Publish(ctx context.Context, queueName string, msg events.Message) blame.Blame {
	if err := ctx.Err(); err != nil {
		return blame.PublishMessageError(queueName, msg.MessageID, err)
	}
	b := ch.broker
	if errp := b.publishErr.Load(); errp != nil {
		return blame.PublishMessageError(queueName, msg.MessageID, *errp)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.closed {
		return blame.PublishMessageError(queueName, msg.MessageID, ErrChannelClosed)
	}
	msg.Body = append([]byte(nil), msg.Body...)
	b.enqueueLocked(queueName, msg)
	return nil
}

func (ch *channel) Consume(ctx context.Context, queueName string, handler events.Handler) (events.Subscription, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.SubscribeToQueueError(queueName, err)
	}
	b := ch.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.closed {
		return nil, blame.SubscribeToQueueError(queueName, ErrChannelClosed)
	}
	q, ok := b.queues[queueName]
	if !ok {
		return nil, blame.SubscribeToQueueError(queueName, ErrNotFound(queueName))
	}

	c := &consumer{
		channel:    ch,
		queue:      q,
		handler:    handler,
		deliveries: make(chan events.Delivery, 1),
		stop:       make(chan struct{}),
	}
	q.consumers = append(q.consumers, c)
	ch.consumers[c] = struct{}{}
	go c.run()
	q.dispatchLocked()
	return c, nil
}

func (ch *channel) Close() error {
	b := ch.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.closed {
		return nil
	}
	ch.closed = true
	for c := range ch.consumers {
		c.cancelLocked()
	}
	b.open.Add(-1)
	return nil
}

type consumer struct {
	channel    *channel
	queue      *queue
	handler    events.Handler
	deliveries chan events.Delivery
	stop       chan struct{}
	stopOnce   sync.Once
	cancelled  bool
	inflight   *message
}

func (c *consumer) Queue() string {
	return c.queue.name
}

func (c *consumer) Cancel() error {
	b := c.channel.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	c.cancelLocked()
	return nil
}

// cancelLocked detaches the consumer and requeues its unacknowledged message.
func (c *consumer) cancelLocked() {
	if c.cancelled {
		return
	}
	c.cancelled = true
	c.queue.removeConsumerLocked(c)
	delete(c.channel.consumers, c)
	if c.inflight != nil {
		c.queue.requeueLocked(c.inflight)
		c.inflight = nil
	}
	c.stopOnce.Do(func() { close(c.stop) })
	c.queue.dispatchLocked()
}

func (c *consumer) run() {
	defer func() {
		helpers.RecoverException(recover())
	}()
	for {
		select {
		case <-c.stop:
			return
		case d := <-c.deliveries:
			select {
			case <-c.stop:
				return
			default:
			}
			c.handler(d)
		}
	}
}

func (c *consumer) ackFunc(m *message) func() error {
	return func() error {
		b := c.channel.broker
		b.mu.Lock()
		defer b.mu.Unlock()
		if c.channel.closed {
			return ErrChannelClosed
		}
		if c.inflight != m {
			return ErrUnknownDeliveryTag
		}
		c.inflight = nil
		c.queue.acked++
		c.queue.dispatchLocked()
		return nil
	}
}
