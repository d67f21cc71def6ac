package idempotency

import (
	"sync"
	"time"
)

const (
	DefaultRetention = 10 * time.Minute
)

// IdempotencyManager remembers recently processed tracking IDs so that
// redelivered work is skipped. Entries older than the retention period are
// swept by a background goroutine until Close is called.
type IdempotencyManager[K comparable] struct {
	trackedEvents map[K]time.Time
	mu            sync.Mutex
	retention     time.Duration
	done          chan struct{}
	closeOnce     sync.Once
}

// NewIdempotencyManager creates a new manager and starts the sweeper.
func NewIdempotencyManager[K comparable](retention time.Duration) *IdempotencyManager[K] {
	if retention <= 0 {
		retention = DefaultRetention
	}
	manager := &IdempotencyManager[K]{
		trackedEvents: make(map[K]time.Time),
		retention:     retention,
		done:          make(chan struct{}),
	}
	go manager.startCleanup()
	return manager
}

func (m *IdempotencyManager[K]) startCleanup() {
	ticker := time.NewTicker(m.retention)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanupProcessedMessages(time.Now())
		}
	}
}

func (m *IdempotencyManager[K]) cleanupProcessedMessages(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for trackingID, timestamp := range m.trackedEvents {
		if now.Sub(timestamp) > m.retention {
			delete(m.trackedEvents, trackingID)
		}
	}
}

// MarkAsProcessed records trackingID as processed now.
func (m *IdempotencyManager[K]) MarkAsProcessed(trackingID K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackedEvents[trackingID] = time.Now()
}

// IsProcessed checks if an event with the given trackingID has already been processed.
func (m *IdempotencyManager[K]) IsProcessed(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.trackedEvents[trackingID]
	return exists
}

// TryMark records trackingID and returns true, or returns false when it was
// already recorded.
func (m *IdempotencyManager[K]) TryMark(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.trackedEvents[trackingID]; exists {
		return false
	}
	m.trackedEvents[trackingID] = time.Now()
	return true
}

// Forget drops trackingID, used when processing failed and a retry should run.
func (m *IdempotencyManager[K]) Forget(trackingID K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trackedEvents, trackingID)
}

// Len returns the number of tracked IDs.
func (m *IdempotencyManager[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trackedEvents)
}

// Close stops the sweeper. It is safe to call more than once.
func (m *IdempotencyManager[K]) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}
