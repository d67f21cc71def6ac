package constant

import (
	"github.com/abhissng/relay/utils/types"
)

// These are headers constant for the application
const (
	CorrelationIDHeader = "X-Correlation-ID"
	RequestIDHeader     = "X-Request-ID"
	IPHeader            = "X-IP"
	MessageIdHeader     = "Message-ID"
	ContentTypeHeader   = "Content-Type"
	ServiceHeader       = "X-Service"
)

// These are group version constants for the server routes
const (
	APIGroup      = "/api"
	HealthRoute   = "/health"
	MetricsRoute  = "/metrics"
	ServicesRoute = "/services"
	ComposeRoute  = "/:service/compose"
	TaskRoute     = "/tasks/:id"
)

// StatusClientClosedRequest is written when the caller went away before the
// reply arrived.
const StatusClientClosedRequest = 499

// Query parameters of the compose route
const (
	AsyncQuery   = "async"
	TimeoutQuery = "timeout"
	ServiceParam = "service"
	TaskIDParam  = "id"
)

// These are protocol constants
const (
	TCP types.Protocol = "tcp"
	UDP types.Protocol = "udp"
)
