package events

import (
	"context"
	"errors"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/circuitBreaker"
	"github.com/sony/gobreaker"
)

// BreakerDialer fails fast while recent dials have been failing. It never
// retries: a failed dial is reported to the caller as is.
type BreakerDialer struct {
	next    Dialer
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerDialer wraps next with a circuit breaker built from opts.
func NewBreakerDialer(next Dialer, logger *log.Log, opts ...circuitBreaker.CircuitBreakerOption) *BreakerDialer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	opts = append([]circuitBreaker.CircuitBreakerOption{
		circuitBreaker.WithName("broker-dial " + next.Address()),
		circuitBreaker.WithOnStateChange(func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				log.String("breaker", name),
				log.String("from", from.String()),
				log.String("to", to.String()),
			)
		}),
		// a caller giving up is not a broker failure
		circuitBreaker.WithIsSuccessful(func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}),
	}, opts...)
	return &BreakerDialer{next: next, breaker: circuitBreaker.NewCircuitBreaker(opts...)}
}

// Address returns the wrapped dialer's address.
func (d *BreakerDialer) Address() string {
	return d.next.Address()
}

// State exposes the breaker state.
func (d *BreakerDialer) State() gobreaker.State {
	return d.breaker.State()
}

// Dial opens a channel through the breaker.
func (d *BreakerDialer) Dial(ctx context.Context) (Channel, blame.Blame) {
	res, err := d.breaker.Execute(func() (any, error) {
		ch, b := d.next.Dial(ctx)
		if b != nil {
			return nil, b
		}
		return ch, nil
	})
	if err != nil {
		var b blame.Blame
		if errors.As(err, &b) {
			return nil, b
		}
		// gobreaker.ErrOpenState or ErrTooManyRequests
		return nil, blame.BrokerCircuitOpenError(d.next.Address(), err)
	}
	return res.(Channel), nil
}
