package schema

import (
	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/tomlctx"
)

// MetaOpts holds the options that may be set at any scope: globally in a
// bind file, per group, per function, and per capture.
type MetaOpts struct {
	// Escape names an escape preset or lists characters to escape.
	Escape optwrite.Opt[string]
	// Proxy is a command prefix placed before a function's binary.
	Proxy optwrite.Opt[string]
}

// OptWrite overwrites each field of m that is set in other.
func (m *MetaOpts) OptWrite(other MetaOpts) {
	m.Escape.Write(other.Escape)
	m.Proxy.Write(other.Proxy)
}

// OverriddenBy returns m with each field set in other replaced.
func (m MetaOpts) OverriddenBy(other MetaOpts) MetaOpts {
	m.OptWrite(other)

	return m
}

// IsZero reports whether no field of m is set.
func (m MetaOpts) IsZero() bool {
	return !m.Escape.IsSet() && !m.Proxy.IsSet()
}

// decodeMeta decodes the optional table key of t.
func decodeMeta(t tomlctx.Table, key string) (MetaOpts, error) {
	mt, ok, err := tomlctx.Optional(tomlctx.ExpectTable(t.Get(key)))
	if err != nil || !ok {
		return MetaOpts{}, err
	}

	var m MetaOpts

	if m.Escape, err = optString(mt, "escape"); err != nil {
		return MetaOpts{}, err
	}

	if m.Proxy, err = optString(mt, "proxy"); err != nil {
		return MetaOpts{}, err
	}

	return m, nil
}

func optString(t tomlctx.Table, key string) (optwrite.Opt[string], error) {
	s, ok, err := tomlctx.Optional(tomlctx.ExpectString(t.Get(key)))

	return optwrite.Maybe(s, ok), err
}

func optStrings(t tomlctx.Table, key string) (optwrite.Opt[[]string], error) {
	s, ok, err := tomlctx.Optional(tomlctx.ExpectStrings(t.Get(key)))

	return optwrite.Maybe(s, ok), err
}

func (m MetaOpts) toMap() map[string]any {
	out := map[string]any{}

	if v, ok := m.Escape.Get(); ok {
		out["escape"] = v
	}

	if v, ok := m.Proxy.Get(); ok {
		out["proxy"] = v
	}

	return out
}
