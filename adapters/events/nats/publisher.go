package nats

import (
	"context"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/nats-io/nats.go"
)

// Publish stores msg in the stream of queue. The message id doubles as the
// JetStream dedupe id.
func (c *channel) Publish(ctx context.Context, queue string, msg events.Message) blame.Blame {
	if c.closedState() {
		return blame.PublishMessageError(queue, msg.MessageID, nats.ErrConnectionClosed)
	}
	if err := c.publish(ctx, toMsg(queue, msg)); err != nil {
		c.logger.Error(constant.EventPublishedFailed, log.String("queue", queue), log.String("message_id", msg.MessageID), log.Err(err))
		return blame.PublishMessageError(queue, msg.MessageID, err)
	}
	c.logger.Debug(constant.EventPublished, log.String("queue", queue), log.String("message_id", msg.MessageID))
	return nil
}

func (c *channel) publishRaw(ctx context.Context, msg *nats.Msg) error {
	_, err := c.js.PublishMsg(msg, nats.Context(ctx))
	return err
}
