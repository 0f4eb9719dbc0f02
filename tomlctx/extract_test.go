package tomlctx

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustParse(t *testing.T, src string) Document {
	t.Helper()

	doc, err := Parse("test.toml", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	return doc
}

const sample = `
name = "headers"
jobs = 4
dry = true
timeout = "1m30s"
bad_timeout = "soon"
tags = ["a", "b"]
mixed = ["a", 1]

[values]
x = "1"
y = "2"

[[groups]]
files = ["*.h"]

[[groups]]
files = ["*.c"]
`

func TestExpect_Success(t *testing.T) {
	doc := mustParse(t, sample)

	if s, err := ExpectString(doc.Get("name")); err != nil || s != "headers" {
		t.Errorf("ExpectString = %q, %v", s, err)
	}

	if n, err := ExpectInt(doc.Get("jobs")); err != nil || n != 4 {
		t.Errorf("ExpectInt = %d, %v", n, err)
	}

	if b, err := ExpectBool(doc.Get("dry")); err != nil || !b {
		t.Errorf("ExpectBool = %v, %v", b, err)
	}

	if d, err := ExpectDuration(doc.Get("timeout")); err != nil ||
		d != 90*time.Second {
		t.Errorf("ExpectDuration = %v, %v", d, err)
	}

	tags, err := ExpectStrings(doc.Get("tags"))
	if err != nil || len(tags) != 2 || tags[1] != "b" {
		t.Errorf("ExpectStrings = %v, %v", tags, err)
	}

	m, err := ExpectStringMap(doc.Get("values"))
	if err != nil || m["x"] != "1" || m["y"] != "2" {
		t.Errorf("ExpectStringMap = %v, %v", m, err)
	}
}

func TestExpectArray_ArrayOfTables(t *testing.T) {
	doc := mustParse(t, sample)

	groups, err := ExpectArray(doc.Get("groups"))
	if err != nil {
		t.Fatalf("ExpectArray failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	g, err := ExpectTable(groups[1].Potential())
	if err != nil {
		t.Fatalf("ExpectTable failed: %v", err)
	}

	files := g.Get("files")
	if got, want := files.Context.String(), "test.toml: groups[1].files"; got != want {
		t.Errorf("context = %q, want %q", got, want)
	}
}

func TestExpect_Failures(t *testing.T) {
	doc := mustParse(t, sample)

	tests := []struct {
		name     string
		run      func() error
		sentinel error
		path     string
	}{
		{
			name:     "missing string",
			run:      func() error { _, err := ExpectString(doc.Get("nope")); return err },
			sentinel: ErrNoKey,
			path:     "test.toml: nope",
		},
		{
			name:     "string is int",
			run:      func() error { _, err := ExpectString(doc.Get("jobs")); return err },
			sentinel: ErrWrongType,
			path:     "test.toml: jobs",
		},
		{
			name:     "table is array",
			run:      func() error { _, err := ExpectTable(doc.Get("tags")); return err },
			sentinel: ErrWrongType,
			path:     "test.toml: tags",
		},
		{
			name:     "mixed strings",
			run:      func() error { _, err := ExpectStrings(doc.Get("mixed")); return err },
			sentinel: ErrWrongType,
			path:     "test.toml: mixed[1]",
		},
		{
			name:     "bad duration",
			run:      func() error { _, err := ExpectDuration(doc.Get("bad_timeout")); return err },
			sentinel: ErrWrongType,
			path:     "test.toml: bad_timeout",
		},
		{
			name: "traverse missing",
			run: func() error {
				_, err := doc.Traverse("values", "deeper")
				return err
			},
			sentinel: ErrNoKey,
			path:     "test.toml: values.deeper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}

			var ge *GetError
			if !errors.As(err, &ge) {
				t.Fatalf("expected *GetError, got %T", err)
			}

			if got := ge.Context.String(); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}

			if !strings.HasPrefix(err.Error(), tt.path) {
				t.Errorf("message %q does not start with path", err.Error())
			}
		})
	}
}

func TestOptional(t *testing.T) {
	doc := mustParse(t, sample)

	s, ok, err := Optional(ExpectString(doc.Get("escape")))
	if err != nil || ok || s != "" {
		t.Errorf("absent: got %q, %v, %v", s, ok, err)
	}

	s, ok, err = Optional(ExpectString(doc.Get("name")))
	if err != nil || !ok || s != "headers" {
		t.Errorf("present: got %q, %v, %v", s, ok, err)
	}

	_, _, err = Optional(ExpectString(doc.Get("jobs")))
	if !errors.Is(err, ErrWrongType) {
		t.Errorf("wrong type: expected ErrWrongType, got %v", err)
	}
}

func TestTable_AllSorted(t *testing.T) {
	doc := mustParse(t, sample)

	values, err := doc.Traverse("values")
	if err != nil {
		t.Fatal(err)
	}

	var keys []string

	for key, v := range values.All() {
		keys = append(keys, key)

		if v.Context.Path() != "values."+key {
			t.Errorf("value context = %q", v.Context.Path())
		}
	}

	if strings.Join(keys, ",") != "x,y" {
		t.Errorf("keys = %v", keys)
	}
}
