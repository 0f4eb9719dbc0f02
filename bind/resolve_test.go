package bind

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/axbind/filebase"
)

func TestLookup_Inclusions(t *testing.T) {
	f := newFixture(t)
	f.mapFile("A", "inclusions = [\"B\"]\n[values]\nx = \"1\"\n")
	f.mapFile("B", "[values]\nx = \"2\"\ny = \"3\"\n")

	r := newResolver(filebase.NewAxbind(f.root))

	tests := []struct {
		key  string
		want string
	}{
		{"x", "1"}, // local wins
		{"y", "3"}, // inherited
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := r.lookup("A", tt.key)
			if err != nil {
				t.Fatalf("lookup failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("lookup(A, %q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if _, err := r.lookup("A", "z"); !errors.Is(err, ErrNoSuchMapping) {
		t.Errorf("expected ErrNoSuchMapping, got %v", err)
	}
}

func TestFlatten_LaterInclusionWins(t *testing.T) {
	f := newFixture(t)
	f.mapFile("top", "inclusions = [\"first\", \"second\"]\n")
	f.mapFile("first", "[values]\nk = \"first\"\nonly_first = \"1\"\n")
	f.mapFile("second", "inclusions = [\"base\"]\n[values]\nk = \"second\"\n")
	f.mapFile("base", "[values]\ndeep = \"base\"\n")

	r := newResolver(filebase.NewAxbind(f.root))

	got, err := r.flatten("top")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"k": "second", "only_first": "1", "deep": "base"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_Cycle(t *testing.T) {
	f := newFixture(t)
	f.mapFile("A", "inclusions = [\"B\"]\n")
	f.mapFile("B", "inclusions = [\"A\"]\n")
	f.mapFile("self", "inclusions = [\"self\"]\n")

	r := newResolver(filebase.NewAxbind(f.root))

	for _, id := range []string{"A", "B", "self"} {
		t.Run(id, func(t *testing.T) {
			_, err := r.lookup(id, "x")
			if !errors.Is(err, ErrCyclicInclusion) {
				t.Fatalf("expected ErrCyclicInclusion, got %v", err)
			}

			if !strings.Contains(err.Error(), id+" -> ") {
				t.Errorf("cycle chain missing from %q", err.Error())
			}
		})
	}
}

func TestResolve_KindErrors(t *testing.T) {
	f := newFixture(t)
	f.function("upper", "[function.pipeline]\ninternal = \"upper\"\n")
	f.mapFile("names", "[values]\n")

	r := newResolver(filebase.NewAxbind(f.root))

	if _, err := r.lookup("upper", "x"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("map layer on function: expected ErrKindMismatch, got %v", err)
	}

	if _, err := r.function("names"); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("function layer on map: expected ErrKindMismatch, got %v", err)
	}

	if _, err := r.lookup("nothing", "x"); !errors.Is(err, ErrUnresolved) {
		t.Errorf("missing map: expected ErrUnresolved, got %v", err)
	}

	if _, err := r.function("nothing"); !errors.Is(err, ErrUnresolved) {
		t.Errorf("missing function: expected ErrUnresolved, got %v", err)
	}
}

func TestResolve_MalformedIsLoadError(t *testing.T) {
	f := newFixture(t)
	f.mapFile("broken", "values = [")

	r := newResolver(filebase.NewAxbind(f.root))

	_, err := r.lookup("broken", "x")
	if !errors.Is(err, filebase.ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}

	if errors.Is(err, ErrUnresolved) {
		t.Error("malformed map reported as unresolved")
	}
}
