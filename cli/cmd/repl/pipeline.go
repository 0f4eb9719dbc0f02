package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/schema"
	"github.com/ardnew/axbind/tomlctx"
)

// inputLabel labels the context of layers parsed from REPL input.
const inputLabel = "try"

// Pipeline is one parsed line of REPL input.
type Pipeline struct {
	Text   string
	Layers []schema.Layer
}

// Parse parses a line of the form
//
//	text | @map | function | function(arg, ...)
//
// The text and each argument may be double-quoted (Go syntax) or
// single-quoted (verbatim) to include '|', ',', or parentheses. A function
// written with parentheses replaces its declared arguments, so "fn()"
// calls fn with none.
func Parse(line string) (Pipeline, error) {
	parts, err := split(line, '|')
	if err != nil {
		return Pipeline{}, err
	}

	text, err := literal(parts[0])
	if err != nil {
		return Pipeline{}, err
	}

	p := Pipeline{Text: text, Layers: make([]schema.Layer, 0, len(parts)-1)}
	ctx := tomlctx.Root(inputLabel).With("layers")

	for i, part := range parts[1:] {
		l, err := parseLayer(strings.TrimSpace(part), ctx.Index(i))
		if err != nil {
			return Pipeline{}, fmt.Errorf("layer %d: %w", i+1, err)
		}

		p.Layers = append(p.Layers, l)
	}

	return p, nil
}

// Capture returns a capture applying the layers of p.
func (p Pipeline) Capture() schema.Capture {
	return schema.Capture{Context: tomlctx.Root(inputLabel), Layers: p.Layers}
}

func parseLayer(s string, ctx tomlctx.Context) (schema.Layer, error) {
	if s == "" {
		return schema.Layer{}, fmt.Errorf("%w: empty layer", ErrSyntax)
	}

	if id, ok := strings.CutPrefix(s, "@"); ok {
		id = strings.TrimSpace(id)
		if err := filebase.Validate(id); err != nil {
			return schema.Layer{}, err
		}

		return schema.Layer{
			Context: ctx,
			Kind:    schema.LayerMap,
			Map:     &schema.MapLayer{ID: id},
		}, nil
	}

	fn := &schema.FunctionLayer{ID: s}

	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return schema.Layer{}, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}

		args, err := parseArgs(s[open+1 : len(s)-1])
		if err != nil {
			return schema.Layer{}, err
		}

		fn.ID = strings.TrimSpace(s[:open])
		fn.Args = optwrite.Some(args)
	}

	if err := filebase.Validate(fn.ID); err != nil {
		return schema.Layer{}, err
	}

	return schema.Layer{Context: ctx, Kind: schema.LayerFunction, Function: fn}, nil
}

func parseArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}

	parts, err := split(s, ',')
	if err != nil {
		return nil, err
	}

	args := make([]string, len(parts))

	for i, part := range parts {
		if args[i], err = literal(part); err != nil {
			return nil, err
		}
	}

	return args, nil
}

// literal returns s without surrounding space, unquoted if it is quoted.
func literal(s string) (string, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, `"`):
		v, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("%w: invalid quoted string %s", ErrSyntax, s)
		}

		return v, nil

	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1], nil
	}

	return s, nil
}

// split splits s at each sep outside quotes and parentheses. A quote
// opens a quoted string only at the start of a token, so apostrophes
// inside words are literal.
func split(s string, sep byte) ([]string, error) {
	var (
		parts []string
		quote byte
		depth int
		start int
	)

	atToken := true

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			switch {
			case c == '\\' && quote == '"':
				i++
			case c == quote:
				quote = 0
			}

		case (c == '"' || c == '\'') && atToken:
			quote = c
			atToken = false

		case c == '(':
			depth++
			atToken = true

		case c == ')':
			if depth == 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
			}

			depth--
			atToken = false

		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
			atToken = true

		case c == ',':
			atToken = true

		case c == ' ' || c == '\t':

		default:
			atToken = false
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrSyntax)
	}

	if depth != 0 {
		return nil, fmt.Errorf("%w: missing ')'", ErrSyntax)
	}

	return append(parts, s[start:]), nil
}
