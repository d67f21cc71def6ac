package blame

import (
	"github.com/abhissng/relay/utils/types"
)

// InternalServerError is an internal server error.
func InternalServerError(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorInternalServerError, WithCauses(cause))
}

// MalformedParameterError is an error when a parameter is malformed.
func MalformedParameterError(name string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ParamMalformed, WithField("name", name), WithCauses(cause))
}

// MarshalError is an error when marshaling fails.
func MarshalError(encodingType types.CodecType, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorMarshalFailed,
		WithField("type", encodingType.ToUpperCase()),
		WithCauses(cause),
	)
}

// UnMarshalError is an error when unmarshaling fails.
func UnMarshalError(encodingType types.CodecType, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorUnmarshalFailed,
		WithField("type", encodingType.ToUpperCase()),
		WithCauses(cause),
	)
}

// BrokerUnreachableError is returned when a connection or channel cannot be opened.
func BrokerUnreachableError(address string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorBrokerUnreachable,
		WithField("address", address),
		WithCauses(cause),
	)
}

// BrokerCircuitOpenError is returned while the dial breaker rejects attempts.
func BrokerCircuitOpenError(address string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorBrokerCircuitOpen,
		WithField("address", address),
		WithCauses(cause),
	)
}

// QueueDeclareError is returned when a queue declaration is refused.
func QueueDeclareError(queue string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorQueueDeclareFailed,
		WithField("queue", queue),
		WithCauses(cause),
	)
}

// PublishMessageError is an error when publishing a message fails.
func PublishMessageError(queue, message string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorPublishMessageFailed,
		WithField("queue", queue),
		WithField("message", message),
		WithCauses(cause),
	)
}

// SubscribeToQueueError is an error when registering a consumer fails.
func SubscribeToQueueError(queue string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorSubscribeToQueueFailed,
		WithField("queue", queue),
		WithCauses(cause),
	)
}

// UnsubscribeFailedError is an error when cancelling a consumer fails.
func UnsubscribeFailedError(queue string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorUnsubscribeFailed,
		WithField("queue", queue),
		WithCauses(cause),
	)
}

// MalformedReplyError describes a result-queue delivery that is not a reply envelope.
func MalformedReplyError(queue string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(
		ErrorMalformedReply,
		WithField("queue", queue),
		WithCauses(cause),
	)
}

// CoordinatorBusyError is returned when a second send overlaps a pending wait.
func CoordinatorBusyError(queue string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorCoordinatorBusy, WithField("queue", queue))
}

// ServiceDefinitionNotFound is an error when no binding exists for a service.
func ServiceDefinitionNotFound(serviceName string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorServiceDefinitionNotFound, WithField("service", serviceName))
}

// ServerStartFailed is an error when the server fails to start.
func ServerStartFailed(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorServerStartFailed, WithCauses(cause))
}

// RequestBodyInvalid is an error when the request body is invalid.
func RequestBodyInvalid(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorRequestBodyInvalid, WithCauses(cause))
}

// ConfigLoadFailure is an error when the config fails to load.
func ConfigLoadFailure(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorConfigLoadFailure, WithCauses(cause))
}

// TaskLookupNotImplemented is returned by the task status endpoint.
func TaskLookupNotImplemented(taskID string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorTaskLookupNotImplemented, WithField("task_id", taskID))
}

// RateLimitExceeded is returned when a client exceeds its request budget.
func RateLimitExceeded(clientIP string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorRateLimitExceeded, WithField("ip", clientIP))
}
