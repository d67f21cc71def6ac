package types

import (
	"strings"

	"go.uber.org/zap"
)

// StringConstant represents a constant string value.
type StringConstant string

// String returns the string representation of the StringConstant.
func (s StringConstant) String() string {
	return string(s)
}

// RequestID identifies a single request sent through a task queue.
type RequestID string

// String returns the string representation of the RequestID.
func (r RequestID) String() string {
	return string(r)
}

// CorrelationID ties an HTTP request to the log lines and messages it caused.
type CorrelationID string

// String returns the string representation of the CorrelationID.
func (c CorrelationID) String() string {
	return string(c)
}

// ErrorCode represents an error code.
type ErrorCode string

// String returns the string representation of the ErrorCode.
func (e ErrorCode) String() string {
	return string(e)
}

// ResponseErrorType represents the type of response error.
type ResponseErrorType string

// String returns the string representation of the ResponseErrorType.
func (e ResponseErrorType) String() string {
	return string(e)
}

// ComponentErrorType represents the type of component error.
type ComponentErrorType string

// String returns the string representation of the ComponentErrorType.
func (e ComponentErrorType) String() string {
	return string(e)
}

// CodecType defines the type of encoder (e.g., JSON, MSGPACK).
type CodecType string

// String returns the string representation of the CodecType.
func (e CodecType) String() string {
	return string(e)
}

// ToUpperCase converts the codec name to upper case.
func (s CodecType) ToUpperCase() string {
	return strings.ToUpper(string(s))
}

// ContentType is a MIME type carried in message properties.
type ContentType string

func (c ContentType) String() string {
	return string(c)
}

// BrokerType names a broker backend (amqp, nats, memory).
type BrokerType string

// String returns the string representation of the BrokerType.
func (b BrokerType) String() string {
	return string(b)
}

// Field type to represent structured log fields
//
//nolint:gochecknoglobals
type Field = zap.Field

// Milliseconds represents a duration in milliseconds.
type Milliseconds int64

// Int64 returns the int64 representation of the Milliseconds.
func (e Milliseconds) Int64() int64 {
	return int64(e)
}

// Protocol represents a protocol.
type Protocol string

// String returns the string representation of the Protocol.
func (p Protocol) String() string {
	return string(p)
}

// Status represents a status.
type Status string

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// LogMode represents the logging mode
type LogMode string

// String returns the string representation of the LogMode.
func (l LogMode) String() string {
	return string(l)
}
