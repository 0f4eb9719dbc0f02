package bind

import (
	"log/slog"
	"strings"

	"github.com/ardnew/axbind/schema"
	"github.com/ardnew/axbind/tomlctx"
)

// Predefined errors (sentinel values).
var (
	// Resolution errors.
	ErrBadCapture      = NewError("invalid capture pattern")
	ErrUnresolved      = NewError("unresolved identifier")
	ErrKindMismatch    = NewError("identifier names a definition of another kind")
	ErrNoSuchMapping   = NewError("no such mapping")
	ErrCyclicInclusion = NewError("cyclic map inclusion")

	// Execution errors.
	ErrArgumentCount   = NewError("too many arguments")
	ErrCommandSpawn    = NewError("failed to start command")
	ErrCommandFailed   = NewError("command failed")
	ErrCommandTimeout  = NewError("command timed out")
	ErrUnknownInternal = NewError("unknown internal function")
	ErrBuiltin         = NewError("internal function failed")
	ErrBadRegex        = NewError("invalid regular expression")

	// Discovery and output errors.
	ErrBadPattern = NewError("invalid file pattern")
	ErrReadSource = NewError("failed to read source file")
	ErrWrite      = NewError("failed to write output")

	// ErrFailures is returned by [Report.Err] when any failure was recorded.
	ErrFailures = NewError("binding failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
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

// Attr returns the value of the attribute key, if e carries one.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// LayerError is a failure of one layer of a capture's pipeline.
type LayerError struct {
	Layer schema.Layer
	Index int
	Err   error
}

func (e *LayerError) Error() string {
	return "layer " + e.Layer.String() + ": " + e.Err.Error()
}

func (e *LayerError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *LayerError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("layer", e.Layer.String()),
		slog.Int("index", e.Index),
		slog.String("path", e.Layer.Context.String()),
		slog.Any("cause", e.Err),
	)
}

// Failure is one capture-local failure of a run.
type Failure struct {
	Group      string
	File       string
	Identifier string
	Context    tomlctx.Context
	Err        error
}

func (f Failure) Error() string {
	var sb strings.Builder

	if s := f.Context.String(); s != "" {
		sb.WriteString(s)
		sb.WriteString(": ")
	}

	if f.File != "" {
		sb.WriteString(f.File)
		sb.WriteString(": ")
	}

	sb.WriteString(f.Err.Error())

	return sb.String()
}

func (f Failure) Unwrap() error { return f.Err }

// LogValue implements slog.LogValuer.
func (f Failure) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("group", f.Group)}

	if f.File != "" {
		attrs = append(attrs, slog.String("file", f.File))
	}

	if f.Identifier != "" {
		attrs = append(attrs, slog.String("identifier", f.Identifier))
	}

	attrs = append(attrs,
		slog.String("path", f.Context.String()),
		slog.Any("reason", f.Err),
	)

	return slog.GroupValue(attrs...)
}
