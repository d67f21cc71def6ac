package amqp

import (
	"context"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/abhissng/relay/utils/random"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

type subscription struct {
	channel *channel
	queue   string
	tag     string
	done    chan struct{}
}

func (s *subscription) Queue() string {
	return s.queue
}

// Cancel stops the consumer and waits briefly for its goroutine to drain.
func (s *subscription) Cancel() error {
	s.channel.mu.Lock()
	delete(s.channel.subs, s.tag)
	s.channel.mu.Unlock()
	return s.cancel()
}

func (s *subscription) cancel() error {
	err := s.channel.ch.Cancel(s.tag, false)
	select {
	case <-s.done:
	case <-time.After(cancelWait):
		s.channel.logger.Warn(constant.QueueUnsubscribed, log.String("queue", s.queue), log.String("consumer", s.tag), log.String("reason", "consumer did not stop in time"))
	}
	if err != nil {
		return blame.UnsubscribeFailedError(s.queue, err)
	}
	s.channel.logger.Debug(constant.QueueUnsubscribed, log.String("queue", s.queue), log.String("consumer", s.tag))
	return nil
}

// Consume starts a manual-ack consumer on queue. Deliveries are handed to
// handler one at a time from a dedicated goroutine.
func (c *channel) Consume(ctx context.Context, queue string, handler events.Handler) (events.Subscription, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.SubscribeToQueueError(queue, err)
	}
	if c.isClosed() {
		return nil, blame.SubscribeToQueueError(queue, amqp091.ErrClosed)
	}

	tag := random.ConsumerTag(DefaultConsumerPrefix, queue)
	deliveries, err := c.ch.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		c.logger.Error(constant.QueueSubscribeFailed, log.String("queue", queue), log.Err(err))
		return nil, blame.SubscribeToQueueError(queue, err)
	}

	sub := &subscription{channel: c, queue: queue, tag: tag, done: make(chan struct{})}
	c.mu.Lock()
	c.subs[tag] = sub
	c.mu.Unlock()

	go func() {
		defer close(sub.done)
		defer func() {
			helpers.RecoverException(recover())
		}()
		for d := range deliveries {
			handler(toDelivery(queue, d))
		}
	}()

	c.logger.Debug(constant.QueueSubscribed, log.String("queue", queue), log.String("consumer", tag))
	return sub, nil
}

func toDelivery(queue string, d amqp091.Delivery) events.Delivery {
	msg := events.Message{
		MessageID:     d.MessageId,
		CorrelationID: d.CorrelationId,
		ContentType:   d.ContentType,
		Timestamp:     d.Timestamp,
		Body:          d.Body,
	}
	return events.NewDelivery(queue, msg, d.Redelivered, func() error {
		return d.Ack(false)
	})
}
