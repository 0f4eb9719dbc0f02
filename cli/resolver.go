package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/axbind/tomlctx"
)

// loadConfig is a [kong.ConfigurationLoader] for TOML configuration files.
//
// Top-level keys name flags. Hyphens and underscores are interchangeable,
// and a table contributes its keys joined to the table name with a hyphen,
// so both of these set --log-level:
//
//	log_level = "debug"
//
//	[log]
//	level = "debug"
//
// Command-line flags override configuration values.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := tomlctx.Parse(baseConfig, data)
	if err != nil {
		return nil, err
	}

	cfg := make(config)
	cfg.flatten("", doc.Map)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened TOML keys.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found: kong applies the flag default.
	return nil, nil
}

// flatten copies table into r, keying nested tables by their hyphenated
// path.
func (r config) flatten(prefix string, table map[string]any) {
	for key, raw := range table {
		name := prefix + strings.ReplaceAll(key, "_", "-")

		if sub, ok := raw.(map[string]any); ok {
			r.flatten(name+"-", sub)

			continue
		}

		r[name] = flagValue(raw)
	}
}

// flagValue converts a decoded TOML value into a form kong's mappers parse.
// Kong requires numbers as strings.
func flagValue(raw any) any {
	switch v := raw.(type) {
	case int64:
		return strconv.FormatInt(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out

	default:
		return v
	}
}
