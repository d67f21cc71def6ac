// Package broker builds the configured events.Dialer.
package broker

import (
	"fmt"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/events/amqp"
	"github.com/abhissng/relay/adapters/events/memory"
	"github.com/abhissng/relay/adapters/events/nats"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/config"
	"github.com/abhissng/relay/utils/circuitBreaker"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/types"
)

// Option adjusts NewDialer.
type Option func(*options)

type options struct {
	memory *memory.Broker
}

// WithMemoryBroker supplies the in-process broker used by the memory backend.
func WithMemoryBroker(b *memory.Broker) Option {
	return func(o *options) {
		o.memory = b
	}
}

// NewDialer returns the dialer for cfg.Broker.Backend, wrapped in a circuit
// breaker when cfg.Breaker.Enabled.
func NewDialer(cfg *config.Config, logger *log.Log, opts ...Option) (events.Dialer, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	bc := cfg.Broker
	var dialer events.Dialer
	switch types.BrokerType(bc.Backend) {
	case constant.BrokerAMQP, "":
		dialer = amqp.NewDialer(bc.Host, bc.Port,
			amqp.WithLogger(logger),
			amqp.WithCredentials(bc.User, bc.Password),
			amqp.WithVHost(bc.VHost),
			amqp.WithHeartbeat(bc.Heartbeat),
			amqp.WithConnectTimeout(bc.ConnectTimeout),
			amqp.WithCloseTimeout(bc.CloseTimeout),
			amqp.WithMiddlewares(
				amqp.AddHeaderMiddleware(constant.ServiceHeader, cfg.Service),
				amqp.LogMiddleware(logger),
			),
		)
	case constant.BrokerNATS:
		dialer = nats.NewDialer(bc.NATSURL,
			nats.WithLogger(logger),
			nats.WithName(cfg.Service),
			nats.WithHeartbeat(bc.Heartbeat),
			nats.WithConnectTimeout(bc.ConnectTimeout),
			nats.WithCloseTimeout(bc.CloseTimeout),
			nats.WithMiddlewares(
				nats.AddHeaderMiddleware(constant.ServiceHeader, cfg.Service),
				nats.LogMiddleware(logger),
			),
		)
	case constant.BrokerMemory:
		if o.memory == nil {
			o.memory = memory.New()
		}
		dialer = o.memory
	default:
		return nil, fmt.Errorf("unknown broker backend %q", bc.Backend)
	}

	if !cfg.Breaker.Enabled {
		return dialer, nil
	}
	return events.NewBreakerDialer(dialer, logger,
		circuitBreaker.WithMaxRequests(cfg.Breaker.MaxRequests),
		circuitBreaker.WithInterval(cfg.Breaker.Interval),
		circuitBreaker.WithTimeout(cfg.Breaker.Timeout),
		circuitBreaker.WithConsecutiveFailures(cfg.Breaker.FailureThreshold),
	), nil
}
