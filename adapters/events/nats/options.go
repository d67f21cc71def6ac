package nats

import (
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/nats-io/nats.go"
)

// Option defines a functional option for configuring a Dialer.
type Option func(*Dialer)

// WithLogger sets the logger for the dialer and the channels it opens.
func WithLogger(logger *log.Log) Option {
	return func(d *Dialer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithName sets the client connection name.
func WithName(name string) Option {
	return func(d *Dialer) {
		if name != "" {
			d.name = name
		}
	}
}

// WithConnectTimeout bounds the connect handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.connectTimeout = timeout
		}
	}
}

// WithHeartbeat sets the client ping interval.
func WithHeartbeat(interval time.Duration) Option {
	return func(d *Dialer) {
		if interval > 0 {
			d.pingInterval = interval
		}
	}
}

// WithCloseTimeout bounds the drain on close before the connection is dropped.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.closeTimeout = timeout
		}
	}
}

// WithStorage sets the storage of streams created for queues.
func WithStorage(storage nats.StorageType) Option {
	return func(d *Dialer) {
		d.storage = storage
	}
}

// WithMiddlewares appends publish middlewares.
func WithMiddlewares(middlewares ...MiddlewareFunc) Option {
	return func(d *Dialer) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// NewStreamConfig returns the work-queue stream backing queue.
func NewStreamConfig(queue string, storage nats.StorageType) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:      StreamName(queue),
		Subjects:  []string{queue},
		Retention: nats.WorkQueuePolicy,
		Storage:   storage,
	}
}

func defaultDialer(url string) *Dialer {
	if url == "" {
		url = nats.DefaultURL
	}
	return &Dialer{
		url:            url,
		name:           DefaultName,
		connectTimeout: constant.DefaultConnectTimeout,
		closeTimeout:   constant.DefaultCloseTimeout,
		pingInterval:   DefaultPingInterval,
		storage:        nats.FileStorage,
	}
}
