package bind

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	const text = "BIND(alpha) x BIND(beta) BIND()"

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"named", `BIND\((?P<capture>\w*)\)`, []string{"alpha", "beta", ""}},
		{"first group", `(BIND)\((\w+)\)`, []string{"BIND", "BIND"}},
		{"whole match", `BIND\(\w+\)`, []string{"BIND(alpha)", "BIND(beta)"}},
		{"no match", `NOPE`, []string{}},
		{"optional group", `x(y)?`, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(regexp.MustCompile(tt.pattern), text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatterns_Cache(t *testing.T) {
	p := newPatterns(2)

	a, err := p.compile(`a+`)
	if err != nil {
		t.Fatal(err)
	}

	again, _ := p.compile(`a+`)
	if a != again {
		t.Error("pattern recompiled while cached")
	}

	if _, err := p.capture(`(`); !errors.Is(err, ErrBadCapture) {
		t.Errorf("expected ErrBadCapture, got %v", err)
	}

	// The failure is cached unwrapped so other callers name their own
	// source.
	if _, err := p.compile(`(`); err == nil || errors.Is(err, ErrBadCapture) {
		t.Errorf("expected plain regexp error, got %v", err)
	}
}
