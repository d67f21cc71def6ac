package engine

import (
	"time"

	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/structures/message"
	"github.com/abhissng/relay/utils/types"
)

// State is the phase of one Send.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribing
	StateSent
	StateWaiting
	StateDelivered
	StateTimedOut
	StateCanceled
	StateFailed
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateConnecting:  "connecting",
	StateSubscribing: "subscribing",
	StateSent:        "sent",
	StateWaiting:     "waiting",
	StateDelivered:   "delivered",
	StateTimedOut:    "timed_out",
	StateCanceled:    "canceled",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a Send.
func (s State) Terminal() bool {
	switch s {
	case StateDelivered, StateTimedOut, StateCanceled, StateFailed:
		return true
	}
	return false
}

// Outcome is the result of a Send that reached the broker. A timeout and a
// cancellation are outcomes, not errors.
type Outcome struct {
	State   State
	Request *message.Request
	// Reply is set only when State is StateDelivered.
	Reply   *message.Reply
	Elapsed time.Duration
}

// Delivered reports whether a matching reply arrived in time.
func (o *Outcome) Delivered() bool {
	return o != nil && o.State == StateDelivered
}

// TimedOut reports whether the wait hit its deadline.
func (o *Outcome) TimedOut() bool {
	return o != nil && o.State == StateTimedOut
}

// Canceled reports whether the caller's context ended the wait.
func (o *Outcome) Canceled() bool {
	return o != nil && o.State == StateCanceled
}

// Status maps the outcome to the status reported to callers.
func (o *Outcome) Status() types.Status {
	switch {
	case o.Delivered():
		return constant.Completed
	case o.TimedOut():
		return constant.TimedOut
	case o.Canceled():
		return constant.Canceled
	}
	return constant.Failed
}
