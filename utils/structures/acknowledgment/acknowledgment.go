// Package acknowledgment holds the bodies the gateway writes to HTTP clients.
package acknowledgment

import (
	"github.com/abhissng/relay/utils/structures/service"
	"github.com/abhissng/relay/utils/types"
)

// APIResponse structure for final response to REST clients
type APIResponse[T any] struct {
	Success       bool                `json:"success"`
	CorrelationID types.CorrelationID `json:"correlation_id"`
	Result        T                   `json:"result"`
}

func NewAPIResponse[T any](
	success bool,
	correlationID types.CorrelationID,
	result T,
) APIResponse[T] {
	return APIResponse[T]{
		Success:       success,
		CorrelationID: correlationID,
		Result:        result,
	}
}

// ComposeResponse reports one request/reply exchange.
type ComposeResponse struct {
	RequestID types.RequestID `json:"request_id"`
	Service   string          `json:"service"`
	Status    types.Status    `json:"status"`
	Data      map[string]any  `json:"data,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// ServicesResponse lists the registered services and their queues.
type ServicesResponse struct {
	Services       map[string]service.Binding `json:"services"`
	SupportedTypes []string                   `json:"supported_types"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status            types.Status               `json:"status"`
	Service           string                     `json:"service"`
	Timestamp         int64                      `json:"timestamp"`
	Broker            string                     `json:"broker"`
	SupportedServices []string                   `json:"supported_services"`
	QueueInfo         map[string]service.Binding `json:"queue_info"`
}

// TaskResponse is returned by the task lookup endpoint.
type TaskResponse struct {
	TaskID string       `json:"task_id"`
	Status types.Status `json:"status"`
}
