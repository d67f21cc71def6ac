package nats

import "time"

const (
	DefaultName         = "relay"
	DefaultPingInterval = 2 * time.Minute

	// stream and durable names may not contain these
	nameReplacer = ".*> "
)
