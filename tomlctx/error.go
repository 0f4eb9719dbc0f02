package tomlctx

import (
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrNoKey     = NewError("missing key")
	ErrWrongType = NewError("wrong type")
	ErrReadFile  = NewError("failed to read file")
	ErrParse     = NewError("failed to parse TOML")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Copies made with [Error.Wrap] and [Error.With] still match their
// sentinel with [errors.Is].
type Error struct {
	base  *Error
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.base == e.base
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{base: e.base, msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{base: e.base, msg: e.msg, err: e.err, attrs: newAttrs}
}

// Kind classifies a [GetError].
type Kind uint8

// Kinds of extraction failure.
const (
	NoKey Kind = iota
	WrongType
)

func (k Kind) sentinel() *Error {
	if k == WrongType {
		return ErrWrongType
	}

	return ErrNoKey
}

// GetError is an extraction failure located by the [Context] of the value
// that could not be extracted.
type GetError struct {
	Context  Context
	Kind     Kind
	Expected string // name of the expected type
	Got      string // name of the actual type, for WrongType
}

func (e *GetError) Error() string {
	var sb strings.Builder

	if s := e.Context.String(); s != "" {
		sb.WriteString(s)
		sb.WriteString(": ")
	}

	sb.WriteString(e.Kind.sentinel().msg)

	if e.Expected != "" {
		sb.WriteString(" (expected ")
		sb.WriteString(e.Expected)

		if e.Kind == WrongType && e.Got != "" {
			sb.WriteString(", got ")
			sb.WriteString(e.Got)
		}

		sb.WriteByte(')')
	}

	return sb.String()
}

// Unwrap returns the sentinel matching the kind of e.
func (e *GetError) Unwrap() error { return e.Kind.sentinel() }

// LogValue implements slog.LogValuer.
func (e *GetError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Kind.sentinel().msg),
		slog.String("path", e.Context.String()),
	}

	if e.Expected != "" {
		attrs = append(attrs, slog.String("expected", e.Expected))
	}

	if e.Got != "" {
		attrs = append(attrs, slog.String("got", e.Got))
	}

	return slog.GroupValue(attrs...)
}
