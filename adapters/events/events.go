// Package events defines the broker contract the request coordinator and the
// workers are written against. Backends live in sub packages.
package events

import (
	"context"
	"time"

	"github.com/abhissng/relay/blame"
)

// Message is one envelope on a queue.
type Message struct {
	MessageID     string
	CorrelationID string
	ContentType   string
	Timestamp     time.Time
	Body          []byte
}

// Delivery is a message handed to a consumer. It must be acknowledged with
// Ack before the broker hands the consumer its next message.
type Delivery struct {
	Message
	Queue       string
	Redelivered bool
	ack         func() error
}

// NewDelivery is used by backends to wrap a received message.
func NewDelivery(queue string, msg Message, redelivered bool, ack func() error) Delivery {
	return Delivery{Message: msg, Queue: queue, Redelivered: redelivered, ack: ack}
}

// Ack acknowledges the delivery.
func (d Delivery) Ack() error {
	if d.ack == nil {
		return nil
	}
	return d.ack()
}

// Handler processes deliveries of one subscription, one at a time.
type Handler func(Delivery)

// Subscription is an active consumer.
type Subscription interface {
	Queue() string
	// Cancel stops delivery. Unacknowledged messages return to the queue.
	Cancel() error
}

// Channel is one logical channel on a broker connection.
type Channel interface {
	// DeclareQueue declares a durable queue. Declaring an existing queue with
	// the same properties is a no-op.
	DeclareQueue(ctx context.Context, name string) blame.Blame

	// Publish sends a persistent message on the default exchange, routed to queue.
	Publish(ctx context.Context, queue string, msg Message) blame.Blame

	// Consume registers a manual-ack consumer with a prefetch of one.
	Consume(ctx context.Context, queue string, handler Handler) (Subscription, blame.Blame)

	// Close releases the channel and its connection. It is idempotent.
	Close() error
}

// Dialer opens channels to a broker.
type Dialer interface {
	Dial(ctx context.Context) (Channel, blame.Blame)
	// Address identifies the broker in logs and errors.
	Address() string
}
