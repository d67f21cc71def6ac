package amqp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// channel owns one connection and its single channel.
type channel struct {
	conn         connection
	ch           amqpChannel
	logger       *log.Log
	address      string
	closeTimeout time.Duration
	publish      Publisher

	mu     sync.Mutex
	closed bool
	subs   map[string]*subscription
}

func newChannel(d *Dialer, conn connection, ch amqpChannel) *channel {
	c := &channel{
		conn:         conn,
		ch:           ch,
		logger:       d.logger,
		address:      d.Address(),
		closeTimeout: d.closeTimeout,
		subs:         make(map[string]*subscription),
	}
	c.publish = applyMiddleware(c.publishRaw, d.middlewares...)
	return c
}

// DeclareQueue declares a durable, non exclusive, non auto-delete queue.
func (c *channel) DeclareQueue(ctx context.Context, name string) blame.Blame {
	if err := ctx.Err(); err != nil {
		return blame.QueueDeclareError(name, err)
	}
	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		c.logger.Error(constant.QueueDeclareFailed, log.String("queue", name), log.Err(err), log.String("hint", hint(err)))
		return blame.QueueDeclareError(name, err)
	}
	c.logger.Debug(constant.QueueDeclared, log.String("queue", name))
	return nil
}

// Close cancels the remaining consumers, closes the channel and then the
// connection. The connection close waits for the broker up to the close
// timeout; after that the socket is dropped.
func (c *channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*subscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.subs = map[string]*subscription{}
	c.mu.Unlock()

	for _, s := range subs {
		_ = s.cancel()
	}

	if err := c.ch.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		c.logger.Debug(constant.ConnectionClosing, log.String("address", c.address), log.Err(err))
	}
	err := c.conn.CloseDeadline(time.Now().Add(c.closeTimeout))
	if err != nil && !errors.Is(err, amqp091.ErrClosed) {
		c.logger.Warn(constant.ConnectionCloseForced, log.String("address", c.address), log.Err(err))
		return err
	}
	c.logger.Debug(constant.ConnectionClosed, log.String("address", c.address))
	return nil
}

func (c *channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
