package amqp

import (
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
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

// WithCredentials sets the PLAIN auth user and password.
func WithCredentials(user, password string) Option {
	return func(d *Dialer) {
		d.user = user
		d.password = password
	}
}

// WithVHost sets the virtual host.
func WithVHost(vhost string) Option {
	return func(d *Dialer) {
		if vhost != "" {
			d.vhost = vhost
		}
	}
}

// WithHeartbeat sets the connection heartbeat. It must exceed the longest
// wait a caller performs on the connection.
func WithHeartbeat(heartbeat time.Duration) Option {
	return func(d *Dialer) {
		if heartbeat > 0 {
			d.heartbeat = heartbeat
		}
	}
}

// WithConnectTimeout bounds the TCP connect and handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.connectTimeout = timeout
		}
	}
}

// WithCloseTimeout bounds the graceful close before the socket is dropped.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.closeTimeout = timeout
		}
	}
}

// WithPrefetch sets the per consumer unacknowledged window.
func WithPrefetch(count int) Option {
	return func(d *Dialer) {
		if count > 0 {
			d.prefetch = count
		}
	}
}

// WithMiddlewares appends publish middlewares.
func WithMiddlewares(middlewares ...MiddlewareFunc) Option {
	return func(d *Dialer) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

func defaultDialer(host string, port int) *Dialer {
	if port <= 0 {
		port = DefaultPort
	}
	return &Dialer{
		host:           host,
		port:           port,
		user:           DefaultUser,
		password:       DefaultUser,
		vhost:          DefaultVHost,
		heartbeat:      constant.DefaultHeartbeat,
		connectTimeout: constant.DefaultConnectTimeout,
		closeTimeout:   constant.DefaultCloseTimeout,
		prefetch:       constant.DefaultPrefetch,
	}
}
