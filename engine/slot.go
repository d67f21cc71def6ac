package engine

import (
	"sync"

	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/types"
)

// slot holds at most one reply. The first offer wins; later offers are
// refused without blocking.
type slot struct {
	once  sync.Once
	reply chan *message.Reply
}

func newSlot() *slot {
	return &slot{reply: make(chan *message.Reply, 1)}
}

func (s *slot) offer(r *message.Reply) bool {
	accepted := false
	s.once.Do(func() {
		s.reply <- r
		accepted = true
	})
	return accepted
}

func (s *slot) done() <-chan *message.Reply {
	return s.reply
}

// pendingWait is the wait of one Send. handling is held while a delivery is
// processed, so settle returns only after that delivery was acknowledged.
type pendingWait struct {
	expectedID types.RequestID
	slot       *slot
	handling   sync.Mutex
}

// settle blocks until no delivery is being handled.
func (w *pendingWait) settle() {
	w.handling.Lock()
	w.handling.Unlock() //nolint:staticcheck // barrier
}

func newPendingWait(id types.RequestID) *pendingWait {
	return &pendingWait{expectedID: id, slot: newSlot()}
}
