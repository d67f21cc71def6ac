package engine

import (
	"context"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/idempotency"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/abhissng/relay/utils/types"
)

// TaskFunc computes the reply payload for one request.
type TaskFunc func(ctx context.Context, req *message.Request) (map[string]any, error)

// EchoTask replies with the request payload under "echo" after delay.
func EchoTask(delay time.Duration) TaskFunc {
	return func(ctx context.Context, req *message.Request) (map[string]any, error) {
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return map[string]any{"echo": req.Payload}, nil
	}
}

// Worker consumes a task queue and publishes one reply per request to the
// result queue, echoing the request id. Requests whose id was already
// answered are acknowledged and skipped.
type Worker struct {
	binding service.Binding
	dialer  events.Dialer
	task    TaskFunc
	opts    options
	log     *log.Log
}

// NewWorker binds a worker to a queue pair. Timeout and id generator
// options are ignored.
func NewWorker(binding service.Binding, dialer events.Dialer, task TaskFunc, opts ...Option) *Worker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.finalize()
	if o.serviceName == "" {
		o.serviceName = binding.TaskQueue
	}
	return &Worker{
		binding: binding,
		dialer:  dialer,
		task:    task,
		opts:    o,
		log: o.logger.With(
			log.String(constant.Service, o.serviceName),
			log.String("task_queue", binding.TaskQueue),
		),
	}
}

// Run consumes until ctx is done or a reply cannot be published. In the
// latter case the unacknowledged task goes back to the queue.
func (w *Worker) Run(ctx context.Context) blame.Blame {
	ch, b := w.dialer.Dial(ctx)
	if b != nil {
		w.log.Error(constant.BrokerConnectFailed, log.Blame(b))
		return b
	}
	defer func() {
		if err := ch.Close(); err != nil {
			w.log.Warn(constant.ConnectionCloseForced, log.Err(err))
		}
	}()

	for _, queue := range []string{w.binding.TaskQueue, w.binding.ResultQueue} {
		if b := ch.DeclareQueue(ctx, queue); b != nil {
			w.log.Error(constant.QueueDeclareFailed, log.Blame(b))
			return b
		}
	}

	answered := idempotency.NewIdempotencyManager[types.RequestID](idempotency.DefaultRetention)
	defer answered.Close()

	failed := make(chan blame.Blame, 1)
	sub, b := ch.Consume(ctx, w.binding.TaskQueue, w.onDelivery(ctx, ch, answered, failed))
	if b != nil {
		w.log.Error(constant.QueueSubscribeFailed, log.Blame(b))
		return b
	}
	defer func() {
		if err := sub.Cancel(); err != nil {
			w.log.Warn(constant.QueueUnsubscribed, log.Err(err))
		}
	}()
	w.log.Info(constant.WorkerMessage, log.String("status", "consuming"))

	select {
	case <-ctx.Done():
		return nil
	case b := <-failed:
		return b
	}
}

func (w *Worker) onDelivery(ctx context.Context, ch events.Channel, answered *idempotency.IdempotencyManager[types.RequestID], failed chan<- blame.Blame) events.Handler {
	return func(d events.Delivery) {
		req, err := message.DecodeRequest(d.Body, d.ContentType)
		if err != nil {
			w.log.Warn(constant.TaskSkipped,
				log.String("reason", "malformed"),
				log.String("queue", d.Queue),
				log.Blame(blame.UnMarshalError(codec.CodecFor(d.ContentType), err)),
			)
			w.ack(d)
			return
		}
		logger := w.log.With(log.String(constant.RequestID, req.ID.String()))
		if answered.IsProcessed(req.ID) {
			logger.Info(constant.TaskSkipped, log.String("reason", "duplicate"), log.Bool("redelivered", d.Redelivered))
			w.ack(d)
			return
		}

		payload, err := w.task(ctx, req)
		if err != nil {
			payload = map[string]any{"status": "failed", "error": err.Error()}
		}
		body, err := message.NewReply(req.ID, payload).Encode(w.opts.codecType)
		if err != nil {
			logger.Error(constant.TaskSkipped, log.String("reason", "encode"), log.Blame(blame.MarshalError(w.opts.codecType, err)))
			w.ack(d)
			return
		}
		reply := events.Message{
			MessageID:     req.ID.String(),
			CorrelationID: req.ID.String(),
			ContentType:   codec.ContentTypeFor(w.opts.codecType).String(),
			Timestamp:     time.Now().UTC(),
			Body:          body,
		}
		if b := ch.Publish(ctx, w.binding.ResultQueue, reply); b != nil {
			logger.Error(constant.EventPublishedFailed, log.Blame(b))
			select {
			case failed <- b:
			default:
			}
			return
		}
		answered.MarkAsProcessed(req.ID)
		w.ack(d)
		logger.Info(constant.TaskProcessed)
	}
}

func (w *Worker) ack(d events.Delivery) {
	if err := d.Ack(); err != nil {
		w.log.Warn(constant.WorkerMessage, log.String("stage", "ack"), log.Err(err))
	}
}
