package constant

import (
	"time"

	"github.com/abhissng/relay/utils/types"
)

// These are generic constant for the application
const (
	RequestID     = "request_id"
	TaskID        = "task_id"
	CorrelationID = "correlation_id"
	Logger        = "logger"

	// These are general constant for config keys
	Service              = "service"
	Environment          = "Environment"
	RunMode              = "RunMode"
	LogRotationEnabled   = "LogRotationEnabled"
	HealthyStatusMessage = "connection healthy"
	DefaultServiceName   = "relay"
)

// These are generic status constants
const (
	Pending   types.Status = "pending"
	Completed types.Status = "completed"
	Failed    types.Status = "failed"
	Success   types.Status = "success"
	Accepted  types.Status = "accepted"
	TimedOut  types.Status = "timeout"
	Canceled  types.Status = "canceled"
	Healthy   types.Status = "healthy"
)

// These are generic typed constant for the application
const (
	IS_PROD types.StringConstant = "IS_PROD"
)

// GraceFul Shutdown Constants
const (
	ServerDefaultGracefulTime  time.Duration = 10 * time.Second
	ServiceDefaultGracefulTime time.Duration = 5 * time.Second
)

// Request/reply defaults
const (
	DefaultTaskTimeout    time.Duration = 120 * time.Second
	DefaultHeartbeat      time.Duration = 600 * time.Second
	DefaultConnectTimeout time.Duration = 10 * time.Second
	DefaultCloseTimeout   time.Duration = 5 * time.Second
	DefaultPrefetch                     = 1
)

// Broker backends
const (
	BrokerAMQP   types.BrokerType = "amqp"
	BrokerNATS   types.BrokerType = "nats"
	BrokerMemory types.BrokerType = "memory"
)
