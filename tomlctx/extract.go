package tomlctx

import (
	"errors"
	"iter"
	"maps"
	"slices"
	"strconv"
	"time"
)

// Table is a TOML table together with its location.
type Table struct {
	Context Context
	Map     map[string]any
}

// Value is a present TOML value of any type together with its location.
type Value struct {
	Context Context
	Raw     any
}

// Potential is a TOML value that may be absent. Its Context is valid even
// when the value is absent, so the missing key can still be reported.
type Potential struct {
	Context Context
	Raw     any
	Present bool
}

// Potential returns v as a present [Potential].
func (v Value) Potential() Potential {
	return Potential{Context: v.Context, Raw: v.Raw, Present: true}
}

// Get returns the value of key in t. It never fails.
func (t Table) Get(key string) Potential {
	raw, ok := t.Map[key]

	return Potential{Context: t.Context.With(key), Raw: raw, Present: ok}
}

// Has reports whether t contains key.
func (t Table) Has(key string) bool {
	_, ok := t.Map[key]

	return ok
}

// Keys returns the keys of t in sorted order.
func (t Table) Keys() []string {
	return slices.Sorted(maps.Keys(t.Map))
}

// All iterates over the entries of t in sorted key order.
func (t Table) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, key := range t.Keys() {
			v := Value{Context: t.Context.With(key), Raw: t.Map[key]}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Traverse descends through nested tables named by keys.
func (t Table) Traverse(keys ...string) (Table, error) {
	for _, key := range keys {
		next, err := ExpectTable(t.Get(key))
		if err != nil {
			return Table{}, err
		}

		t = next
	}

	return t, nil
}

func noKey(p Potential, expected string) error {
	return &GetError{Context: p.Context, Kind: NoKey, Expected: expected}
}

func wrongType(ctx Context, raw any, expected string) error {
	return &GetError{
		Context:  ctx,
		Kind:     WrongType,
		Expected: expected,
		Got:      TypeName(raw),
	}
}

// ExpectTable returns p as a table.
func ExpectTable(p Potential) (Table, error) {
	if !p.Present {
		return Table{}, noKey(p, "table")
	}

	m, ok := p.Raw.(map[string]any)
	if !ok {
		return Table{}, wrongType(p.Context, p.Raw, "table")
	}

	return Table{Context: p.Context, Map: m}, nil
}

// ExpectArray returns the elements of p, each located by its index.
func ExpectArray(p Potential) ([]Value, error) {
	if !p.Present {
		return nil, noKey(p, "array")
	}

	var elems []Value

	switch arr := p.Raw.(type) {
	case []any:
		elems = make([]Value, len(arr))
		for i, raw := range arr {
			elems[i] = Value{Context: p.Context.Index(i), Raw: raw}
		}

	case []map[string]any:
		elems = make([]Value, len(arr))
		for i, raw := range arr {
			elems[i] = Value{Context: p.Context.Index(i), Raw: raw}
		}

	default:
		return nil, wrongType(p.Context, p.Raw, "array")
	}

	return elems, nil
}

// ExpectString returns p as a string.
func ExpectString(p Potential) (string, error) {
	if !p.Present {
		return "", noKey(p, "string")
	}

	s, ok := p.Raw.(string)
	if !ok {
		return "", wrongType(p.Context, p.Raw, "string")
	}

	return s, nil
}

// ExpectStrings returns p as an array of strings. A mistyped element is
// reported at its own index.
func ExpectStrings(p Potential) ([]string, error) {
	elems, err := ExpectArray(p)
	if err != nil {
		return nil, err
	}

	strs := make([]string, len(elems))

	for i, v := range elems {
		if strs[i], err = ExpectString(v.Potential()); err != nil {
			return nil, err
		}
	}

	return strs, nil
}

// ExpectInt returns p as an integer.
func ExpectInt(p Potential) (int64, error) {
	if !p.Present {
		return 0, noKey(p, "integer")
	}

	n, ok := p.Raw.(int64)
	if !ok {
		return 0, wrongType(p.Context, p.Raw, "integer")
	}

	return n, nil
}

// ExpectBool returns p as a boolean.
func ExpectBool(p Potential) (bool, error) {
	if !p.Present {
		return false, noKey(p, "boolean")
	}

	b, ok := p.Raw.(bool)
	if !ok {
		return false, wrongType(p.Context, p.Raw, "boolean")
	}

	return b, nil
}

// ExpectStringMap returns p as a table whose values are all strings.
func ExpectStringMap(p Potential) (map[string]string, error) {
	t, err := ExpectTable(p)
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, len(t.Map))

	for key, v := range t.All() {
		if m[key], err = ExpectString(v.Potential()); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ExpectDuration returns p as a duration written in the notation of
// [time.ParseDuration], such as "1m30s".
func ExpectDuration(p Potential) (time.Duration, error) {
	s, err := ExpectString(p)
	if err != nil {
		var ge *GetError
		if errors.As(err, &ge) {
			ge.Expected = "duration"
		}

		return 0, err
	}

	d, perr := time.ParseDuration(s)
	if perr != nil {
		return 0, &GetError{
			Context:  p.Context,
			Kind:     WrongType,
			Expected: "duration",
			Got:      strconv.Quote(s),
		}
	}

	return d, nil
}

// Optional converts a [NoKey] failure into an absent result. Any other
// error is returned unchanged.
func Optional[T any](v T, err error) (T, bool, error) {
	if err == nil {
		return v, true, nil
	}

	var zero T

	var ge *GetError
	if errors.As(err, &ge) && ge.Kind == NoKey {
		return zero, false, nil
	}

	return zero, false, err
}

// TypeName returns the TOML name of the type of a decoded value.
func TypeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "nothing"
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "boolean"
	case map[string]any:
		return "table"
	case []any, []map[string]any:
		return "array"
	case time.Time:
		return "datetime"
	default:
		return "unknown"
	}
}
