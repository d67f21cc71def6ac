package graceful

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/stretchr/testify/assert"
)

func TestShutdownAllRunsInOrder(t *testing.T) {
	var order []string
	first := ShutdownFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		order = append(order, "server")
		return nil
	})
	second := ShutdownFunc(func(context.Context) error {
		order = append(order, "limiter")
		return errors.New("already stopped")
	})

	err := ShutdownAll(log.NewNopLogger(), time.Second, first, second)

	assert.EqualError(t, err, "already stopped")
	assert.Equal(t, []string{"server", "limiter"}, order)
}

func TestSignalContextFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("signal context outlived its parent")
	}
}

func TestShutdownAllBoundsEachService(t *testing.T) {
	slow := ShutdownFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := ShutdownAll(log.NewNopLogger(), 100*time.Millisecond, slow)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
