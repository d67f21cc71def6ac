package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/abhissng/relay/adapters/events/memory"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/engine"
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorMetrics(t *testing.T) {
	mc := NewMetricsCollector(WithServiceName("relay"), WithRegistry(prometheus.NewRegistry()))
	broker := memory.New()
	c := engine.NewCoordinator(
		service.Binding{TaskQueue: "tasks", ResultQueue: "results"},
		broker,
		engine.WithLogger(log.NewNopLogger()),
		engine.WithMetrics(mc),
		engine.WithServiceName("basic"),
	)

	outcome, b := c.Send(context.Background(), nil, engine.WithSendTimeout(20*time.Millisecond))
	require.Nil(t, b)
	require.True(t, outcome.TimedOut())

	assert.Equal(t, float64(1), testutil.ToFloat64(mc.sends.WithLabelValues("basic", "timed_out")))
	assert.Equal(t, float64(0), testutil.ToFloat64(mc.OpenChannels()))
	assert.Equal(t, 1, testutil.CollectAndCount(mc.waitSeconds))
}

func TestReplyDiscardedAndPrefix(t *testing.T) {
	mc := NewMetricsCollector(WithServiceName("relay-gateway"))
	mc.ReplyDiscarded("advanced", engine.DiscardMismatch)
	mc.ReplyDiscarded("advanced", engine.DiscardMismatch)

	assert.Equal(t, "relay_gateway", mc.ServiceName())
	assert.Equal(t, float64(2), testutil.ToFloat64(mc.discardedReplies.WithLabelValues("advanced", "mismatch")))

	families, err := mc.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["relay_gateway_discarded_replies_total"])
	assert.True(t, names["go_goroutines"])
}
