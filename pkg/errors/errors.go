// Package errors provides the error helpers used throughout mirrord.
//
// Errors are wrapped with a short description of what was being attempted
// (WithContext) rather than with stack traces. The root cause can always be
// recovered with RootCause, and the wrappers interoperate with the standard
// library's errors.Is and errors.As through Unwrap.
package errors

import (
	goErrors "errors"
	"fmt"
)

// New returns an error with the given message. The message is formatted with
// fmt.Sprintf if arguments are provided.
func New(msg string, args ...interface{}) error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return goErrors.New(msg)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goErrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return goErrors.As(err, target)
}

type contextError struct {
	cause   error
	context string
}

// WithContext annotates err with a description of the operation that failed.
// It returns nil if err is nil.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{cause: err, context: context}
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.cause)
}

func (err contextError) Unwrap() error {
	return err.cause
}

// RootCause strips every context annotation from err and returns the
// original error.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.cause
	}
}

// FriendlyError is an error whose message is meant to be shown directly to
// the operator, without any of the wrapping context.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError from a format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{msg: fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message to show the operator.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

// Friendly is implemented by errors that carry an operator-facing message.
type Friendly interface {
	FriendlyMessage() string
}

// GetFriendlyMessage returns the operator-facing message of the first
// friendly error in err's chain.
func GetFriendlyMessage(err error) (string, bool) {
	var friendly Friendly
	if As(err, &friendly) {
		return friendly.FriendlyMessage(), true
	}
	return "", false
}
