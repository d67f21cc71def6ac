// Package engine runs synchronous requests over a task queue and its result
// queue.
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/structures/service"
)

// Coordinator sends requests to one service and waits for the matching
// reply. Each Send opens its own connection and releases it before
// returning. One Send may be in flight per Coordinator; calls may be
// repeated once the previous one returned.
type Coordinator struct {
	binding  service.Binding
	dialer   events.Dialer
	opts     options
	log      *log.Log
	inFlight atomic.Bool
	state    atomic.Int32
}

// NewCoordinator binds a coordinator to a queue pair.
func NewCoordinator(binding service.Binding, dialer events.Dialer, opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.finalize()
	if o.serviceName == "" {
		o.serviceName = binding.TaskQueue
	}
	return &Coordinator{
		binding: binding,
		dialer:  dialer,
		opts:    o,
		log: o.logger.With(
			log.String(constant.Service, o.serviceName),
			log.String("task_queue", binding.TaskQueue),
			log.String("result_queue", binding.ResultQueue),
		),
	}
}

// State returns the phase of the current or last Send.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Binding returns the queue pair the coordinator is bound to.
func (c *Coordinator) Binding() service.Binding {
	return c.binding
}

func (c *Coordinator) transition(to State) {
	from := State(c.state.Swap(int32(to)))
	c.log.Debug(constant.StateTransitioned, log.Stringer("from", from), log.Stringer("to", to))
}

// Send publishes payload to the task queue and blocks until the matching
// reply arrives, the timeout passes, or ctx is done. A ctx deadline ends the
// wait as a timeout. Connectivity, declaration and publish failures are
// returned as a blame; a timeout or a cancellation is returned as an Outcome.
func (c *Coordinator) Send(ctx context.Context, payload map[string]any, opts ...SendOption) (*Outcome, blame.Blame) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, blame.CoordinatorBusyError(c.binding.TaskQueue)
	}
	defer c.inFlight.Store(false)

	call := sendConfig{timeout: c.opts.timeout}
	for _, opt := range opts {
		opt(&call)
	}

	start := time.Now()
	req := message.NewRequest(c.opts.idGenerator(), payload)
	logger := c.log.With(log.String(constant.RequestID, req.ID.String()))

	body, err := req.Encode(c.opts.codecType)
	if err != nil {
		c.transition(StateFailed)
		return nil, blame.MarshalError(c.opts.codecType, err)
	}

	c.transition(StateConnecting)
	ch, b := c.dialer.Dial(ctx)
	if b != nil {
		return nil, c.fail(logger, constant.BrokerConnectFailed, b, start)
	}
	c.opts.metrics.ChannelOpened()

	var (
		sub  events.Subscription
		wait *pendingWait
	)
	defer func() {
		if wait != nil {
			wait.settle()
		}
		c.release(logger, ch, sub)
	}()

	c.transition(StateSubscribing)
	if b := ch.DeclareQueue(ctx, c.binding.ResultQueue); b != nil {
		return nil, c.fail(logger, constant.QueueDeclareFailed, b, start)
	}
	wait = newPendingWait(req.ID)
	sub, b = ch.Consume(ctx, c.binding.ResultQueue, c.onDelivery(logger, wait))
	if b != nil {
		return nil, c.fail(logger, constant.QueueSubscribeFailed, b, start)
	}

	if b := ch.Publish(ctx, c.binding.TaskQueue, c.envelope(req, body)); b != nil {
		return nil, c.fail(logger, constant.EventPublishedFailed, b, start)
	}
	c.transition(StateSent)
	logger.Info(constant.RequestSent, log.Duration("timeout", call.timeout))

	c.transition(StateWaiting)
	timer := time.NewTimer(call.timeout)
	defer timer.Stop()

	outcome := &Outcome{Request: req}
	select {
	case reply := <-wait.slot.done():
		outcome.State = StateDelivered
		outcome.Reply = reply
		logger.Info(constant.ReplyDelivered)
	case <-timer.C:
		outcome.State = StateTimedOut
		logger.Warn(constant.WaitTimedOut, log.Duration("timeout", call.timeout))
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome.State = StateTimedOut
			logger.Warn(constant.WaitTimedOut, log.Err(ctx.Err()))
			break
		}
		outcome.State = StateCanceled
		logger.Warn(constant.WaitCanceled, log.Err(ctx.Err()))
	}
	outcome.Elapsed = time.Since(start)
	c.transition(outcome.State)
	c.opts.metrics.ObserveSend(c.opts.serviceName, outcome.State, outcome.Elapsed)
	return outcome, nil
}

// Submit publishes payload to the task queue without waiting for a reply.
func (c *Coordinator) Submit(ctx context.Context, payload map[string]any) (*message.Request, blame.Blame) {
	req := message.NewRequest(c.opts.idGenerator(), payload)
	logger := c.log.With(log.String(constant.RequestID, req.ID.String()))

	body, err := req.Encode(c.opts.codecType)
	if err != nil {
		return nil, blame.MarshalError(c.opts.codecType, err)
	}

	ch, b := c.dialer.Dial(ctx)
	if b != nil {
		logger.Error(constant.BrokerConnectFailed, log.Blame(b))
		return nil, b
	}
	c.opts.metrics.ChannelOpened()
	defer c.release(logger, ch, nil)

	if b := ch.Publish(ctx, c.binding.TaskQueue, c.envelope(req, body)); b != nil {
		logger.Error(constant.EventPublishedFailed, log.Blame(b))
		return nil, b
	}
	logger.Info(constant.TaskSubmitted)
	return req, nil
}

func (c *Coordinator) envelope(req *message.Request, body []byte) events.Message {
	return events.Message{
		MessageID:     req.ID.String(),
		CorrelationID: req.ID.String(),
		ContentType:   codec.ContentTypeFor(c.opts.codecType).String(),
		Timestamp:     req.CreatedAt,
		Body:          body,
	}
}

func (c *Coordinator) fail(logger *log.Log, msg string, b blame.Blame, start time.Time) blame.Blame {
	logger.Error(msg, log.Blame(b))
	c.transition(StateFailed)
	c.opts.metrics.ObserveSend(c.opts.serviceName, StateFailed, time.Since(start))
	return b
}

// release cancels the subscription, if any, then closes the channel.
func (c *Coordinator) release(logger *log.Log, ch events.Channel, sub events.Subscription) {
	if sub != nil {
		if err := sub.Cancel(); err != nil {
			logger.Warn(constant.QueueUnsubscribed, log.Err(err))
		}
	}
	if err := ch.Close(); err != nil {
		logger.Warn(constant.ConnectionCloseForced, log.Err(err))
	}
	c.opts.metrics.ChannelClosed()
	logger.Debug(constant.ConnectionClosed)
}

// onDelivery acknowledges every delivery once it has been handled. Only a
// decodable reply carrying the expected id reaches the slot, and only the
// first one.
func (c *Coordinator) onDelivery(logger *log.Log, wait *pendingWait) events.Handler {
	return func(d events.Delivery) {
		wait.handling.Lock()
		defer wait.handling.Unlock()
		defer func() {
			if err := d.Ack(); err != nil {
				logger.Debug(constant.MessageAckFailed, log.String("message_id", d.MessageID), log.Err(err))
			}
		}()

		reply, err := message.DecodeReply(d.Body, d.ContentType)
		if err != nil {
			logger.Warn(constant.ReplyMalformed, log.Blame(blame.MalformedReplyError(d.Queue, err)))
			c.opts.metrics.ReplyDiscarded(c.opts.serviceName, DiscardMalformed)
			return
		}
		if reply.RequestID != wait.expectedID {
			logger.Debug(constant.ReplyDiscarded, log.String("reply_request_id", reply.RequestID.String()))
			c.opts.metrics.ReplyDiscarded(c.opts.serviceName, DiscardMismatch)
			return
		}
		if !wait.slot.offer(reply) {
			logger.Debug(constant.ReplyDuplicate)
			c.opts.metrics.ReplyDiscarded(c.opts.serviceName, DiscardDuplicate)
		}
	}
}
