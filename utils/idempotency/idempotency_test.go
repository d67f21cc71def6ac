package idempotency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryMarkOnlyOnce(t *testing.T) {
	m := NewIdempotencyManager[string](time.Minute)
	defer m.Close()

	assert.True(t, m.TryMark("r1"))
	assert.False(t, m.TryMark("r1"))
	assert.True(t, m.IsProcessed("r1"))

	m.Forget("r1")
	assert.True(t, m.TryMark("r1"))
}

func TestCleanupDropsExpired(t *testing.T) {
	m := NewIdempotencyManager[string](time.Minute)
	defer m.Close()

	m.MarkAsProcessed("old")
	m.cleanupProcessedMessages(time.Now().Add(2 * time.Minute))

	assert.False(t, m.IsProcessed("old"))
	assert.Equal(t, 0, m.Len())
	m.Close()
}
