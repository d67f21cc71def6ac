package amqp

import (
	"context"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Publish sends msg as a persistent message on the default exchange with the
// queue name as routing key.
func (c *channel) Publish(ctx context.Context, queue string, msg events.Message) blame.Blame {
	if c.isClosed() {
		return blame.PublishMessageError(queue, msg.MessageID, amqp091.ErrClosed)
	}
	pub := toPublishing(msg)
	if err := c.publish(ctx, queue, &pub); err != nil {
		c.logger.Error(constant.EventPublishedFailed, log.String("queue", queue), log.String("message_id", msg.MessageID), log.Err(err))
		return blame.PublishMessageError(queue, msg.MessageID, err)
	}
	c.logger.Debug(constant.EventPublished, log.String("queue", queue), log.String("message_id", msg.MessageID))
	return nil
}

func (c *channel) publishRaw(ctx context.Context, queue string, pub *amqp091.Publishing) error {
	return c.ch.PublishWithContext(ctx, defaultExchange, queue, false, false, *pub)
}

func toPublishing(msg events.Message) amqp091.Publishing {
	return amqp091.Publishing{
		Headers:       amqp091.Table{constant.MessageIdHeader: msg.MessageID},
		ContentType:   msg.ContentType,
		DeliveryMode:  amqp091.Persistent,
		MessageId:     msg.MessageID,
		CorrelationId: msg.CorrelationID,
		Timestamp:     msg.Timestamp,
		Body:          msg.Body,
	}
}
