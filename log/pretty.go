package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// layout selects how a prettyHandler arranges the fields of a record.
type layout int

const (
	layoutText layout = iota // key=value pairs on one line
	layoutJSON               // one "key": value pair per line inside braces
)

// prettyHandler renders colorized records for terminals.
// Group attributes, including resolved [slog.LogValuer] values, are
// flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	layout layout
	attrs  []slog.Attr
	prefix string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	l layout,
) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, layout: l}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []field

	if !r.Time.IsZero() {
		fields = h.appendBuiltin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.appendBuiltin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields, field{
				key:   slog.SourceKey,
				value: slog.StringValue(src.File + ":" + strconv.Itoa(src.Line)),
			})
		}
	}

	fields = append(fields, field{
		key:   slog.MessageKey,
		value: slog.StringValue(r.Message),
	})

	for _, a := range h.attrs {
		fields = flatten(fields, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	switch h.layout {
	case layoutJSON:
		writeJSONLayout(buf, fields)
	default:
		writeTextLayout(buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h

	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}

		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// appendBuiltin passes a built-in attribute through ReplaceAttr.
func (h *prettyHandler) appendBuiltin(fields []field, a slog.Attr) []field {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return fields
	}

	return append(fields, field{key: a.Key, value: a.Value, level: a.Key == slog.LevelKey})
}

// field is one rendered key and its resolved value.
type field struct {
	key   string
	value slog.Value
	level bool
}

// flatten appends the attribute a, expanding groups into dotted keys.
func flatten(fields []field, prefix string, a slog.Attr) []field {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return fields
		}

		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}

		for _, ga := range group {
			fields = flatten(fields, sub, ga)
		}

		return fields
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: prefix + a.Key, value: v})
}

func writeTextLayout(buf *bytes.Buffer, fields []field) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray)
		buf.WriteString(f.key)
		buf.WriteString(colorReset)
		buf.WriteByte('=')
		writeValue(buf, f)
	}

	buf.WriteByte('\n')
}

func writeJSONLayout(buf *bytes.Buffer, fields []field) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(colorGray)
		buf.WriteString(f.key)
		buf.WriteString(colorReset)
		buf.WriteString(": ")
		writeValue(buf, f)
	}

	buf.WriteString("\n}\n")
}

func writeValue(buf *bytes.Buffer, f field) {
	v := f.value

	if f.level {
		buf.WriteString(levelColor(v.String()))
		buf.WriteString(v.String())
		buf.WriteString(colorReset)

		return
	}

	switch v.Kind() {
	case slog.KindInt64:
		colored(buf, colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		colored(buf, colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		colored(buf, colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			colored(buf, colorGreen, "true")
		} else {
			colored(buf, colorRed, "false")
		}

	case slog.KindDuration:
		colored(buf, colorMagenta, v.Duration().String())

	case slog.KindTime:
		colored(buf, colorBlue, v.Time().Format(time.RFC3339))

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			colored(buf, colorRed, err.Error())

			return
		}

		colored(buf, colorCyan, fmt.Sprint(v.Any()))

	default:
		colored(buf, colorCyan, v.String())
	}
}

func colored(buf *bytes.Buffer, color, s string) {
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}

func levelColor(name string) string {
	switch {
	case strings.HasPrefix(name, "ERROR"):
		return colorRed
	case strings.HasPrefix(name, "WARN"):
		return colorYellow
	case strings.HasPrefix(name, "INFO"):
		return colorGreen
	default:
		return colorBlue
	}
}
