package nats

import (
	"context"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/nats-io/nats.go"
)

// Publisher sends one message.
type Publisher func(ctx context.Context, msg *nats.Msg) error

// MiddlewareFunc wraps a Publisher.
type MiddlewareFunc func(Publisher) Publisher

// applyMiddleware applies the chain so that the first middleware runs first.
func applyMiddleware(publisher Publisher, middlewares ...MiddlewareFunc) Publisher {
	for i := len(middlewares) - 1; i >= 0; i-- {
		publisher = middlewares[i](publisher)
	}
	return publisher
}

// AddHeaderMiddleware returns a middleware that sets a header key/value on the message.
func AddHeaderMiddleware(key, value string) MiddlewareFunc {
	return func(next Publisher) Publisher {
		return func(ctx context.Context, msg *nats.Msg) error {
			if msg.Header == nil {
				msg.Header = nats.Header{}
			}
			msg.Header.Set(key, value)
			return next(ctx, msg)
		}
	}
}

// LogMiddleware logs every publish at debug level and failures at error level.
func LogMiddleware(logger *log.Log) MiddlewareFunc {
	return func(next Publisher) Publisher {
		return func(ctx context.Context, msg *nats.Msg) error {
			logger.Debug(constant.EventPublished, Slog(msg)...)
			err := next(ctx, msg)
			if err != nil {
				logger.Error(constant.EventPublishedFailed, Slog(msg, log.Err(err))...)
			}
			return err
		}
	}
}
