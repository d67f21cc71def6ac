// Package nats implements the events contract on NATS JetStream. Each queue
// is a work-queue stream with a single subject of the same name.
package nats

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	"github.com/nats-io/nats.go"
)

// ErrStreamMismatch is returned when a stream exists for a queue with
// properties relay cannot use.
var ErrStreamMismatch = errors.New("stream exists with different retention or subjects")

// Dialer opens one NATS connection per Dial.
type Dialer struct {
	url            string
	name           string
	connectTimeout time.Duration
	closeTimeout   time.Duration
	pingInterval   time.Duration
	storage        nats.StorageType
	middlewares    []MiddlewareFunc
	logger         *log.Log
}

// NewDialer creates a dialer for url.
func NewDialer(url string, options ...Option) *Dialer {
	d := defaultDialer(url)
	for _, opt := range options {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	return d
}

// Address returns the server URL.
func (d *Dialer) Address() string {
	return d.url
}

// Dial connects and initialises a JetStream context.
func (d *Dialer) Dial(ctx context.Context) (events.Channel, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.BrokerUnreachableError(d.url, err)
	}

	closed := make(chan struct{})
	nc, err := nats.Connect(d.url,
		nats.Name(d.name),
		nats.Timeout(d.connectTimeout),
		nats.PingInterval(d.pingInterval),
		nats.NoReconnect(),
		nats.DrainTimeout(d.closeTimeout),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				d.logger.Warn("NATS disconnected", log.String("address", d.url), log.Err(err))
			}
		}),
	)
	if err != nil {
		d.logger.Error(constant.BrokerConnectFailed, log.String("address", d.url), log.Err(err))
		return nil, blame.BrokerUnreachableError(d.url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, blame.BrokerUnreachableError(d.url, err)
	}

	d.logger.Debug(constant.BrokerConnected, log.String("address", d.url))
	c := &channel{
		nc:           nc,
		js:           js,
		address:      d.url,
		closed:       closed,
		logger:       d.logger,
		storage:      d.storage,
		closeTimeout: d.closeTimeout,
		subs:         make(map[*subscription]struct{}),
	}
	c.publish = applyMiddleware(c.publishRaw, d.middlewares...)
	return c, nil
}

type channel struct {
	nc           *nats.Conn
	js           nats.JetStreamContext
	address      string
	closed       chan struct{}
	logger       *log.Log
	storage      nats.StorageType
	closeTimeout time.Duration
	publish      Publisher

	mu       sync.Mutex
	isClosed bool
	subs     map[*subscription]struct{}
}

// DeclareQueue creates the work-queue stream for name, or accepts an existing
// one bound to the same subject.
func (c *channel) DeclareQueue(ctx context.Context, name string) blame.Blame {
	if err := ctx.Err(); err != nil {
		return blame.QueueDeclareError(name, err)
	}
	cfg := NewStreamConfig(name, c.storage)
	_, err := c.js.AddStream(cfg, nats.Context(ctx))
	if err == nil {
		c.logger.Debug(constant.QueueDeclared, log.String("queue", name), log.String("stream", cfg.Name))
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		c.logger.Error(constant.QueueDeclareFailed, log.String("queue", name), log.Err(err))
		return blame.QueueDeclareError(name, err)
	}

	info, err := c.js.StreamInfo(cfg.Name, nats.Context(ctx))
	if err != nil {
		return blame.QueueDeclareError(name, err)
	}
	if info.Config.Retention != nats.WorkQueuePolicy || !slices.Contains(info.Config.Subjects, name) {
		c.logger.Error(constant.QueueDeclareFailed, log.String("queue", name), log.Err(ErrStreamMismatch))
		return blame.QueueDeclareError(name, ErrStreamMismatch)
	}
	return nil
}

// Close unsubscribes, drains the connection and waits for it to close. If
// the drain does not finish in time the connection is closed outright.
func (c *channel) Close() error {
	c.mu.Lock()
	if c.isClosed {
		c.mu.Unlock()
		return nil
	}
	c.isClosed = true
	subs := make([]*subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.subs = map[*subscription]struct{}{}
	c.mu.Unlock()

	for _, s := range subs {
		_ = s.unsubscribe()
	}

	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return nil
	}
	if !c.awaitClosed() {
		c.nc.Close()
	}
	return nil
}

// awaitClosed waits for the drain to finish and reports whether it did.
func (c *channel) awaitClosed() bool {
	select {
	case <-c.closed:
		c.logger.Debug(constant.ConnectionClosed, log.String("address", c.address))
		return true
	case <-time.After(c.closeTimeout):
		c.logger.Warn(constant.ConnectionCloseForced, log.String("address", c.address), log.String("reason", "drain timed out"))
		return false
	}
}

func (c *channel) closedState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosed
}
