// Package graceful ties process signals to context cancellation and shutdown.
package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
)

// Shutdowner is an interface that defines a Shutdown method.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownFunc is a function type that matches the Shutdown method signature.
type ShutdownFunc func(ctx context.Context) error

// Shutdown implements the Shutdowner interface for ShutdownFunc.
func (f ShutdownFunc) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// SignalContext returns a context that is canceled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ShutdownAll calls Shutdown on every service in order, each bounded by
// timeout. The first error is returned.
func ShutdownAll(logger *log.Log, timeout time.Duration, services ...Shutdowner) error {
	var first error
	for _, service := range services {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := service.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			logger.Error(constant.SystemError, log.String("stage", "shutdown"), log.Err(err))
			if first == nil {
				first = err
			}
		}
	}
	logger.Info(constant.SystemStopped)
	return first
}
