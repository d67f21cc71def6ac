package engine

import "time"

// Reasons a delivery on a result queue is discarded.
const (
	DiscardMalformed = "malformed"
	DiscardMismatch  = "mismatch"
	DiscardDuplicate = "duplicate"
)

// Metrics receives coordinator events. adapters/prometheus implements it.
type Metrics interface {
	ObserveSend(service string, state State, wait time.Duration)
	ChannelOpened()
	ChannelClosed()
	ReplyDiscarded(service, reason string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSend(string, State, time.Duration) {}
func (nopMetrics) ChannelOpened()                           {}
func (nopMetrics) ChannelClosed()                           {}
func (nopMetrics) ReplyDiscarded(string, string)            {}
