package pkg

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil errors are skipped, and nil is returned if none remain.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns every error in the chain, innermost first, separated by
// ": ".
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e, err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(e, fmt.Errorf(format, args...))
}

// Unwrap returns the errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// LogValue renders each error of the chain as its own attribute, so
// errors that implement [slog.LogValuer] keep their structure.
func (e Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e))

	for i, err := range e {
		key := strconv.Itoa(i)

		if lv, ok := err.(slog.LogValuer); ok {
			attrs = append(attrs, slog.Any(key, lv))
		} else {
			attrs = append(attrs, slog.String(key, err.Error()))
		}
	}

	return slog.GroupValue(attrs...)
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
// Errors that wrap several errors contribute each of them in order.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return append(Error{}, e...)
	}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		var chain Error

		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain
	}

	return Error{err}
}
