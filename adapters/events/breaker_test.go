package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/events/memory"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/circuitBreaker"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	broker := memory.New()
	broker.FailDials(errors.New("connection refused"))
	dialer := events.NewBreakerDialer(broker, nil, circuitBreaker.WithConsecutiveFailures(2))

	for i := 0; i < 2; i++ {
		_, err := dialer.Dial(context.Background())
		require.NotNil(t, err)
		assert.Equal(t, blame.ErrorBrokerUnreachable, err.FetchErrCode())
	}
	assert.Equal(t, gobreaker.StateOpen, dialer.State())

	broker.FailDials(nil)
	_, err := dialer.Dial(context.Background())
	require.NotNil(t, err)
	assert.Equal(t, blame.ErrorBrokerCircuitOpen, err.FetchErrCode())
	assert.Equal(t, 0, broker.OpenChannels())
}

func TestBreakerPassesThroughChannels(t *testing.T) {
	broker := memory.New()
	dialer := events.NewBreakerDialer(broker, nil)

	ch, err := dialer.Dial(context.Background())
	require.Nil(t, err)
	assert.Equal(t, 1, broker.OpenChannels())
	require.NoError(t, ch.Close())
	assert.Equal(t, memory.Address, dialer.Address())
}
