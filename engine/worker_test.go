package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhissng/relay/adapters/events"
	"github.com/abhissng/relay/adapters/events/memory"
	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/codec"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWorker(t *testing.T, broker *memory.Broker, task TaskFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(basic, broker, task, WithLogger(log.NewNopLogger()))
	done := make(chan blame.Blame, 1)
	go func() { done <- w.Run(ctx) }()
	require.Eventually(t, func() bool {
		stats, ok := broker.Stats(basic.TaskQueue)
		return ok && stats.Consumers == 1
	}, time.Second, 5*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		assert.Nil(t, <-done)
	})
}

func taskMessage(t *testing.T, id string, payload map[string]any) events.Message {
	t.Helper()
	req := message.NewRequest(types.RequestID(id), payload)
	body, err := req.Encode(codec.JSON)
	require.NoError(t, err)
	return events.Message{MessageID: id, ContentType: codec.ContentTypeJSON.String(), Body: body}
}

func TestWorkerAnswersCoordinator(t *testing.T) {
	broker := memory.New()
	startWorker(t, broker, EchoTask(10*time.Millisecond))
	c := NewCoordinator(basic, broker, WithLogger(log.NewNopLogger()), WithTimeout(2*time.Second))

	outcome, b := c.Send(context.Background(), map[string]any{"prompt": "wool"})

	require.Nil(t, b)
	require.Equal(t, StateDelivered, outcome.State)
	assert.Equal(t, map[string]any{"echo": map[string]any{"prompt": "wool"}}, outcome.Reply.Payload)
	assert.Equal(t, 1, broker.OpenChannels(), "only the worker channel stays open")
}

func TestWorkerSkipsAnsweredRequest(t *testing.T) {
	broker := memory.New()
	startWorker(t, broker, EchoTask(0))

	require.True(t, broker.Inject(basic.TaskQueue, taskMessage(t, "r1", map[string]any{"n": 1})))
	require.True(t, broker.Inject(basic.TaskQueue, taskMessage(t, "r1", map[string]any{"n": 1})))
	require.True(t, broker.Inject(basic.TaskQueue, taskMessage(t, "r2", map[string]any{"n": 2})))

	require.Eventually(t, func() bool {
		stats, _ := broker.Stats(basic.TaskQueue)
		return stats.Acked == 3
	}, time.Second, 5*time.Millisecond)

	replies := broker.Drain(basic.ResultQueue)
	require.Len(t, replies, 2)
	ids := []string{replies[0].MessageID, replies[1].MessageID}
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids)
}

func TestWorkerRepliesWithTaskError(t *testing.T) {
	broker := memory.New()
	startWorker(t, broker, func(context.Context, *message.Request) (map[string]any, error) {
		return nil, errors.New("model unavailable")
	})

	require.True(t, broker.Inject(basic.TaskQueue, taskMessage(t, "r3", nil)))
	require.Eventually(t, func() bool {
		stats, _ := broker.Stats(basic.ResultQueue)
		return stats.Ready == 1
	}, time.Second, 5*time.Millisecond)

	replies := broker.Drain(basic.ResultQueue)
	reply, err := message.DecodeReply(replies[0].Body, replies[0].ContentType)
	require.NoError(t, err)
	assert.Equal(t, "r3", reply.RequestID.String())
	assert.Equal(t, map[string]any{"status": "failed", "error": "model unavailable"}, reply.Payload)
}

// lockedBuffer lets the test read log output the worker goroutine writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWorkerAcksMalformedTask(t *testing.T) {
	var out lockedBuffer
	logger, err := log.NewLogger(log.NewLoggerConfig(true, log.WithOutput(&out), log.WithLevel("warn")))
	require.NoError(t, err)

	broker := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWorker(basic, broker, EchoTask(0), WithLogger(logger))
	go func() { _ = w.Run(ctx) }()
	require.Eventually(t, func() bool {
		stats, ok := broker.Stats(basic.TaskQueue)
		return ok && stats.Consumers == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, broker.Inject(basic.TaskQueue, events.Message{ContentType: codec.ContentTypeJSON.String(), Body: []byte(`{"payload":{}}`)}))
	require.True(t, broker.Inject(basic.TaskQueue, events.Message{ContentType: codec.ContentTypeJSON.String(), Body: []byte(`{not json`)}))
	require.Eventually(t, func() bool {
		stats, _ := broker.Stats(basic.TaskQueue)
		return stats.Acked == 2
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, broker.Drain(basic.ResultQueue))
	assert.Equal(t, 2, strings.Count(out.String(), blame.ErrorUnmarshalFailed.String()), out.String())
}

func TestWorkerStopsWhenReplyCannotBePublished(t *testing.T) {
	broker := memory.New()
	w := NewWorker(basic, broker, EchoTask(0), WithLogger(log.NewNopLogger()))
	done := make(chan blame.Blame, 1)
	go func() { done <- w.Run(context.Background()) }()
	require.Eventually(t, func() bool {
		stats, ok := broker.Stats(basic.TaskQueue)
		return ok && stats.Consumers == 1
	}, time.Second, 5*time.Millisecond)

	broker.FailPublishes(errors.New("channel closed"))
	require.True(t, broker.Inject(basic.TaskQueue, taskMessage(t, "r4", nil)))

	select {
	case b := <-done:
		require.NotNil(t, b)
		assert.Equal(t, blame.ErrorPublishMessageFailed, b.FetchErrCode())
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	stats, _ := broker.Stats(basic.TaskQueue)
	assert.Equal(t, 1, stats.Ready, "task returns to the queue")
	assert.Equal(t, 0, broker.OpenChannels())
}

func TestWorkerDialFailure(t *testing.T) {
	broker := memory.New()
	broker.FailDials(errors.New("connection refused"))

	b := NewWorker(basic, broker, EchoTask(0), WithLogger(log.NewNopLogger())).Run(context.Background())

	require.NotNil(t, b)
	assert.Equal(t, blame.ErrorBrokerUnreachable, b.FetchErrCode())
}
