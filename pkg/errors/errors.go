// Package errors defines the coded errors reported by the rsolver CLI and
// HTTP API.
//
// The reduction packages return plain sentinel errors wrapped with
// fmt.Errorf. At the outer surfaces they are classified into an [Error]
// whose [Code] picks the HTTP status and the process exit code, so a
// failure reads the same in a terminal and in a response body.
//
// Codes group as follows:
//   - INVALID_*: the input was rejected before solving
//   - *NOT_FOUND: a file or route does not exist
//   - NOT_REDUCIBLE, TIMEOUT: the solve gave up
//   - INTERNAL_*: a broken invariant or unexpected failure
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidNetlist Code = "INVALID_NETLIST"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidName    Code = "INVALID_NAME"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeNotReducible Code = "NOT_REDUCIBLE"
	ErrCodeTimeout      Code = "TIMEOUT"

	ErrCodeInternalInvariant Code = "INTERNAL_INVARIANT"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
	ErrCodeUnsupported       Code = "UNSUPPORTED"
)

// Error pairs a [Code] with a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap returns the cause so errors.Is sees through the code.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain carries code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message and cause of a coded error without the
// code prefix. Other errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	switch {
	case !errors.As(err, &e):
		return err.Error()
	case e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Exit codes returned by the rsolver command.
const (
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitNotReducible = 3
	ExitTimeout      = 4
)

// ExitCode maps err to a process exit status: 0 for nil, otherwise one of
// the Exit* constants.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidNetlist, ErrCodeInvalidFormat, ErrCodeInvalidName,
		ErrCodeNotFound, ErrCodeFileNotFound:
		return ExitInvalidInput
	case ErrCodeNotReducible:
		return ExitNotReducible
	case ErrCodeTimeout:
		return ExitTimeout
	}
	return ExitFailure
}
