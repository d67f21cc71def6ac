// Package amqp implements the events contract on an AMQP 0-9-1 broker such as
// RabbitMQ.
package amqp

import (
	"context"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/helpers"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp091.Channel relay uses.
type amqpChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Cancel(consumer string, noWait bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// connection is the part of *amqp091.Connection relay uses.
type connection interface {
	openChannel() (amqpChannel, error)
	CloseDeadline(deadline time.Time) error
	Close() error
}

type liveConnection struct {
	*amqp091.Connection
}

func (c liveConnection) openChannel() (amqpChannel, error) {
	return c.Channel()
}

type dialFunc func(url string, cfg amqp091.Config) (connection, error)

func dialBroker(url string, cfg amqp091.Config) (connection, error) {
	conn, err := amqp091.DialConfig(url, cfg)
	if err != nil {
		return nil, err
	}
	return liveConnection{conn}, nil
}

// Dialer opens one connection with one channel per Dial.
type Dialer struct {
	host           string
	port           int
	user           string
	password       string
	vhost          string
	heartbeat      time.Duration
	connectTimeout time.Duration
	closeTimeout   time.Duration
	prefetch       int
	middlewares    []MiddlewareFunc
	logger         *log.Log
	dial           dialFunc
}

// NewDialer creates a dialer for host:port.
func NewDialer(host string, port int, options ...Option) *Dialer {
	d := defaultDialer(host, port)
	for _, opt := range options {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewBasicLogger(helpers.IsProdEnvironment())
	}
	d.dial = dialBroker
	return d
}

// Address returns the broker location without credentials.
func (d *Dialer) Address() string {
	return RedactedURL(d.host, d.port, d.vhost)
}

func (d *Dialer) config() amqp091.Config {
	return amqp091.Config{
		SASL:      []amqp091.Authentication{&amqp091.PlainAuth{Username: d.user, Password: d.password}},
		Vhost:     d.vhost,
		Heartbeat: d.heartbeat,
		Locale:    DefaultLocale,
		Dial:      amqp091.DefaultDial(d.connectTimeout),
		Properties: amqp091.Table{
			"connection_name": helpers.GetServiceName(),
		},
	}
}

// Dial connects, opens a channel and applies the prefetch window.
func (d *Dialer) Dial(ctx context.Context) (events.Channel, blame.Blame) {
	if err := ctx.Err(); err != nil {
		return nil, blame.BrokerUnreachableError(d.Address(), err)
	}

	conn, err := d.dial(BuildURL(d.host, d.port, d.user, d.password, d.vhost), d.config())
	if err != nil {
		d.logger.Error(constant.BrokerConnectFailed, log.String("address", d.Address()), log.Err(err), log.String("hint", hint(err)))
		return nil, blame.BrokerUnreachableError(d.Address(), err)
	}

	ch, err := conn.openChannel()
	if err != nil {
		_ = conn.Close()
		d.logger.Error(constant.BrokerConnectFailed, log.String("address", d.Address()), log.Err(err))
		return nil, blame.BrokerUnreachableError(d.Address(), err)
	}

	if err := ch.Qos(d.prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, blame.BrokerUnreachableError(d.Address(), err)
	}

	d.logger.Debug(constant.BrokerConnected, log.String("address", d.Address()), log.Duration("heartbeat", d.heartbeat))
	return newChannel(d, conn, ch), nil
}
