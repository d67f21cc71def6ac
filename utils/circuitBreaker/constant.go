package circuitBreaker

import "time"

const (
	DefaultCircuitBreakerName      = "broker-dial"
	DefaultBreakerTimeout          = 30 * time.Second
	DefaultBreakerInterval         = time.Minute
	DefaultBreakerMaxRequests      = 1
	DefaultBreakerFailureThreshold = 5
)
