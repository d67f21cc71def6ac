package amqp

import (
	"context"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Publisher sends one publishing to a queue.
type Publisher func(ctx context.Context, queue string, pub *amqp091.Publishing) error

// MiddlewareFunc wraps a Publisher.
type MiddlewareFunc func(Publisher) Publisher

// applyMiddleware wraps publisher so that the first middleware runs first.
func applyMiddleware(publisher Publisher, middlewares ...MiddlewareFunc) Publisher {
	for i := len(middlewares) - 1; i >= 0; i-- {
		publisher = middlewares[i](publisher)
	}
	return publisher
}

// AddHeaderMiddleware sets a header on every publishing.
func AddHeaderMiddleware(key, value string) MiddlewareFunc {
	return func(next Publisher) Publisher {
		return func(ctx context.Context, queue string, pub *amqp091.Publishing) error {
			if pub.Headers == nil {
				pub.Headers = amqp091.Table{}
			}
			pub.Headers[key] = value
			return next(ctx, queue, pub)
		}
	}
}

// LogMiddleware logs every publishing at debug level, and failures at error level.
func LogMiddleware(logger *log.Log) MiddlewareFunc {
	return func(next Publisher) Publisher {
		return func(ctx context.Context, queue string, pub *amqp091.Publishing) error {
			fields := Slog(queue, pub)
			logger.Debug(constant.EventPublished, fields...)
			err := next(ctx, queue, pub)
			if err != nil {
				logger.Error(constant.EventPublishedFailed, append(fields, log.Err(err))...)
			}
			return err
		}
	}
}
