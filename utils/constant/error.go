package constant

import "github.com/abhissng/relay/utils/types"

// These are ComponentErrorType constant
const (
	ErrService     types.ComponentErrorType = "service"
	ErrAdaptors    types.ComponentErrorType = "adaptors"
	ErrMiddlewares types.ComponentErrorType = "middlewares"
	ErrController  types.ComponentErrorType = "controller"
	ErrApplication types.ComponentErrorType = "application"
	ErrLibrary     types.ComponentErrorType = "library"
	ErrUtils       types.ComponentErrorType = "utils"
	ErrEngine      types.ComponentErrorType = "engine"
	ErrBroker      types.ComponentErrorType = "broker"
)

// These are generic HTTP request error constant
const (
	BadRequest         types.ResponseErrorType = "BadRequest"
	Forbidden          types.ResponseErrorType = "Forbidden"
	NotFound           types.ResponseErrorType = "NotFound"
	AlreadyExists      types.ResponseErrorType = "AlreadyExists"
	Conflict           types.ResponseErrorType = "Conflict"
	InternalServer     types.ResponseErrorType = "InternalServerError"
	Unauthorized       types.ResponseErrorType = "Unauthorized"
	BadGateway         types.ResponseErrorType = "BadGateway"
	ServiceUnavailable types.ResponseErrorType = "ServiceUnavailable"
	TooManyRequests    types.ResponseErrorType = "TooManyRequests"
)
