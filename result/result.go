// Package result carries either a value or a blame out of a handler.
package result

import (
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
)

// Result is a generic interface that can represent either a success or an error.
type Result[T any] interface {
	// IsError returns true if the result is an error, false otherwise.
	IsError() bool
	// Error returns the error value.
	Error() blame.Blame
	// Code is the HTTP status a success should be written with, 0 for the default.
	Code() int
	// ToValue returns the success value if the result is a success, nil otherwise.
	ToValue() *T
}

// Success represents a successful result.
type Success[T any] struct {
	Val        *T
	StatusCode int
}

// NewSuccess creates a new success result.
func NewSuccess[T any](value *T) Result[T] {
	return &Success[T]{Val: value}
}

// NewSuccessWithCode creates a success that is written with a specific status,
// e.g. 202 for an accepted task or 504 for a wait that ran out.
func NewSuccessWithCode[T any](value *T, code int) Result[T] {
	return &Success[T]{Val: value, StatusCode: code}
}

// IsError implements Result.
func (s Success[T]) IsError() bool {
	return false
}

// Error implements Result.
func (s Success[T]) Error() blame.Blame {
	return blame.NewBasicBlame("success-cannot-be-error").WithComponent(constant.ErrLibrary)
}

// Code implements Result.
func (s Success[T]) Code() int {
	return s.StatusCode
}

// ToValue returns the success value.
func (s Success[T]) ToValue() *T {
	return s.Val
}

// Failure represents an error result.
type Failure[T any] struct {
	Err blame.Blame
}

// NewFailure creates a new Failure result.
func NewFailure[T any](err blame.Blame) Result[T] {
	return &Failure[T]{Err: err}
}

// IsError implements Result.
func (f Failure[T]) IsError() bool {
	return true
}

// Error implements Result.
func (f Failure[T]) Error() blame.Blame {
	return f.Err
}

// Code implements Result. Failures take their status from the blame.
func (f Failure[T]) Code() int {
	return 0
}

// ToValue implements Result.
func (f Failure[T]) ToValue() *T {
	return nil
}
