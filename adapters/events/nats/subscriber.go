package nats

import (
	"context"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/nats-io/nats.go"
)

type subscription struct {
	channel *channel
	queue   string
	sub     *nats.Subscription
}

func (s *subscription) Queue() string {
	return s.queue
}

// Cancel stops delivery. Unacknowledged messages are redelivered to the
// remaining members of the durable queue group.
func (s *subscription) Cancel() error {
	s.channel.mu.Lock()
	delete(s.channel.subs, s)
	s.channel.mu.Unlock()
	return s.unsubscribe()
}

func (s *subscription) unsubscribe() error {
	if !s.sub.IsValid() {
		return nil
	}
	if err := s.sub.Unsubscribe(); err != nil {
		s.channel.logger.Warn(constant.QueueUnsubscribed, log.String("queue", s.queue), log.Err(err))
		return blame.UnsubscribeFailedError(s.queue, err)
	}
	s.channel.logger.Debug(constant.QueueUnsubscribed, log.String("queue", s.queue))
	return nil
}

// Consume joins the durable queue group of queue with explicit acks and one
// message in flight.
func (c *channel) Consume(ctx context.Context, queue string, handler events.Handler) (events.Subscription, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.SubscribeToQueueError(queue, err)
	}
	if c.closedState() {
		return nil, blame.SubscribeToQueueError(queue, nats.ErrConnectionClosed)
	}

	durable := DurableName(queue)
	sub, err := c.js.QueueSubscribe(queue, durable, func(msg *nats.Msg) {
		defer func() {
			helpers.RecoverException(recover())
		}()
		handler(events.NewDelivery(queue, fromMsg(msg), redelivered(msg), func() error {
			return msg.Ack()
		}))
	},
		nats.Durable(durable),
		nats.BindStream(StreamName(queue)),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.MaxAckPending(constant.DefaultPrefetch),
		nats.DeliverAll(),
	)
	if err != nil {
		c.logger.Error(constant.QueueSubscribeFailed, log.String("queue", queue), log.Err(err))
		return nil, blame.SubscribeToQueueError(queue, err)
	}

	s := &subscription{channel: c, queue: queue, sub: sub}
	c.mu.Lock()
	c.subs[s] = struct{}{}
	c.mu.Unlock()
	c.logger.Debug(constant.QueueSubscribed, log.String("queue", queue), log.String("durable", durable))
	return s, nil
}
