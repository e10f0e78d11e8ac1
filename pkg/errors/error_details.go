package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "price must be positive".
	Message string

	// Code (required) is one of the ErrorCode values.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Object (optional) is the related object the error occured on, if any.
	Object interface{}
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates a new ErrorDetails struct with an associated object.
func NewErrorDetailsWithObject(message, code, field string, object interface{}) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
		Object:  object,
	}
}

// NewRejectReason creates the terminal rejection returned for an invalid order.
func NewRejectReason(code ErrorCode, field, format string, args ...any) *ErrorDetails {
	return NewErrorDetails(fmt.Sprintf(format, args...), string(code), field)
}

// NewSequenceGap creates the fatal error raised when a sequence number is skipped.
func NewSequenceGap(market string, expected, got int64) *ErrorDetails {
	return NewErrorDetailsWithObject(
		fmt.Sprintf("sequence gap detected: expected %d, got %d", expected, got),
		string(SequenceGap),
		market,
		got,
	)
}

// NewInvariantViolation creates the fatal error raised for inconsistent book state.
func NewInvariantViolation(market, format string, args ...any) *ErrorDetails {
	return NewErrorDetails(fmt.Sprintf(format, args...), string(InvariantViolation), market)
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether a given `error` has a specific code.
// Wrapped errors are unwrapped until an ErrorDetails is found.
func ErrorCodeEquals(err error, code string) bool {
	errDetails := AsDetails(err)
	if errDetails == nil {
		return false
	}

	return errDetails.Code == code
}

// AsDetails returns the first ErrorDetails in the chain of err, or nil.
func AsDetails(err error) *ErrorDetails {
	var details *ErrorDetails
	if errors.As(err, &details) {
		return details
	}
	return nil
}
