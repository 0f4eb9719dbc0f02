package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/axbind/pkg"
)

func TestRootFrom(t *testing.T) {
	if got := rootFrom(context.Background()); got != pkg.ConfigDir() {
		t.Errorf("default root = %q, want %q", got, pkg.ConfigDir())
	}

	if got := rootFrom(WithRoot(context.Background(), "/defs")); got != "/defs" {
		t.Errorf("root = %q, want /defs", got)
	}
}

func TestOutputFrom(t *testing.T) {
	if got := outputFrom(context.Background()); got != os.Stdout {
		t.Errorf("default output = %v", got)
	}

	var buf bytes.Buffer

	if got := outputFrom(WithOutput(context.Background(), &buf)); got != &buf {
		t.Errorf("output = %v", got)
	}
}

func TestBindFiles_Default(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(DefaultBindFile, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := bindFiles(nil)
	if err != nil {
		t.Fatalf("bindFiles failed: %v", err)
	}

	if len(got) != 1 || got[0] != DefaultBindFile {
		t.Errorf("bindFiles(nil) = %v", got)
	}
}

func TestBindFiles_GlobsDeduplicated(t *testing.T) {
	p := newProject(t)
	a := p.bindFile("a.toml", "")
	b := p.bindFile("sub/b.toml", "")

	got, err := bindFiles([]string{
		filepath.Join(p.dir, "**", "*.toml"),
		a,
	})
	if err != nil {
		t.Fatalf("bindFiles failed: %v", err)
	}

	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("bindFiles = %v, want [%s %s]", got, a, b)
	}
}

func TestBindFiles_NoMatch(t *testing.T) {
	_, err := bindFiles([]string{filepath.Join(t.TempDir(), "*.toml")})
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestLoadBindFiles_Malformed(t *testing.T) {
	p := newProject(t)
	path := p.bindFile("axbind.toml", "[[groups]\n")

	_, err := loadBindFiles([]string{path})
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}

func TestError_IsThroughCopies(t *testing.T) {
	err := ErrFailures.With().Wrap(errors.New("x"))

	if !errors.Is(err, ErrFailures) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(err, ErrCheck) {
		t.Error("derived error matches another sentinel")
	}
}
