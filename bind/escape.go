package bind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
)

// Escape presets. Any other escape setting is a set of characters, each of
// which is prefixed with a backslash.
const (
	EscapeNone  = "none"
	EscapeJSON  = "json"
	EscapeShell = "shell"
	EscapeHTML  = "html"
	EscapeRegex = "regex"
	EscapeC     = "c"
)

// EscapePresets returns the names of the escape presets.
func EscapePresets() []string {
	return []string{EscapeC, EscapeHTML, EscapeJSON, EscapeNone, EscapeRegex, EscapeShell}
}

// Escape applies the escape setting spec to text. An empty spec leaves
// text unchanged.
func Escape(text, spec string) string {
	switch spec {
	case "", EscapeNone:
		return text
	case EscapeJSON:
		return escapeJSON(text)
	case EscapeShell:
		return "'" + strings.ReplaceAll(text, "'", `'\''`) + "'"
	case EscapeHTML:
		return html.EscapeString(text)
	case EscapeRegex:
		return regexp.QuoteMeta(text)
	case EscapeC:
		return escapeC(text)
	default:
		return escapeSet(text, spec)
	}
}

// escapeJSON returns the contents of text encoded as a JSON string, without
// the surrounding quotes.
func escapeJSON(text string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(text) // strings always encode

	out := strings.TrimSuffix(buf.String(), "\n")

	return out[1 : len(out)-1]
}

func escapeC(text string) string {
	var sb strings.Builder

	for _, b := range []byte(text) {
		switch b {
		case '\\', '"', '\'':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if b < 0x20 || b == 0x7f {
				fmt.Fprintf(&sb, `\%03o`, b)
			} else {
				sb.WriteByte(b)
			}
		}
	}

	return sb.String()
}

func escapeSet(text, set string) string {
	chars := []rune(set)

	var sb strings.Builder

	for _, r := range text {
		if slices.Contains(chars, r) {
			sb.WriteByte('\\')
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
