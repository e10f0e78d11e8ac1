package errors

import "github.com/pkg/errors"

// StackTracer is implemented by errors that carry the stack they were created on.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer carries a message and the underlying error with its stack.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates an ErrorTracer with the provided message.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError adopts err's message. The stack is recorded here unless err already has one.
func TracerFromError(err error) *ErrorTracer {
	return &ErrorTracer{Message: err.Error(), Err: withStack(err)}
}

// Wrap attaches err as the cause, recording the stack unless err already has one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = withStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the stack of the underlying error, if any.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if st, ok := e.Err.(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

func withStack(err error) error {
	if _, ok := err.(StackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}
