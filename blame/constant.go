package blame

import (
	"github.com/abhissng/relay/utils/types"
)

const (
	ReasonCodeNameSpace = "RELAY"
	ReasonCodeBase      = 100000
)

// Error Identifiers
const (
	ErrorInternalServerError       types.ErrorCode = "error-internal-server-error"
	ParamMalformed                 types.ErrorCode = "param-malformed"
	ErrorMarshalFailed             types.ErrorCode = "error-marshal-failed"
	ErrorUnmarshalFailed           types.ErrorCode = "error-unmarshal-failed"
	ErrorBrokerUnreachable         types.ErrorCode = "error-broker-unreachable"
	ErrorBrokerCircuitOpen         types.ErrorCode = "error-broker-circuit-open"
	ErrorQueueDeclareFailed        types.ErrorCode = "error-queue-declare-failed"
	ErrorPublishMessageFailed      types.ErrorCode = "error-publish-message-failed"
	ErrorSubscribeToQueueFailed    types.ErrorCode = "error-subscribe-to-queue-failed"
	ErrorUnsubscribeFailed         types.ErrorCode = "error-unsubscribe-failed"
	ErrorMalformedReply            types.ErrorCode = "error-malformed-reply"
	ErrorCoordinatorBusy           types.ErrorCode = "error-coordinator-busy"
	ErrorServiceDefinitionNotFound types.ErrorCode = "error-service-definition-not-found"
	ErrorServerStartFailed         types.ErrorCode = "error-server-start-failed"
	ErrorRequestBodyInvalid        types.ErrorCode = "error-request-body-invalid"
	ErrorConfigLoadFailure         types.ErrorCode = "error-config-load-failure"
	ErrorTaskLookupNotImplemented  types.ErrorCode = "error-task-lookup-not-implemented"
	ErrorRateLimitExceeded         types.ErrorCode = "error-rate-limit-exceeded"
)
