package pkg

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "axbind" {
		t.Errorf("Expected Name to be %q, got %q", "axbind", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestPrefixNotEmpty(t *testing.T) {
	if Prefix() == "" {
		t.Error("Prefix should never be empty")
	}
}

func TestMakeError_SkipsNil(t *testing.T) {
	if err := MakeError(nil, nil); err != nil {
		t.Errorf("expected nil chain, got %v", err)
	}
}

func TestMakeError_Order(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	err := MakeError(first, second)

	if got, want := err.Error(), "first: second"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Error("expected errors.Is to find both members")
	}
}

func TestMakeError_FlattensNested(t *testing.T) {
	inner := MakeError(errors.New("a"), errors.New("b"))
	outer := MakeError(inner, errors.New("c"))

	if len(outer) != 3 {
		t.Fatalf("expected 3 flattened errors, got %d: %v", len(outer), outer)
	}
}

func TestError_Wrapf(t *testing.T) {
	err := MakeErrorf("load %s", "axbind.toml").Wrapf("group %d", 2)

	if got, want := err.Error(), "load axbind.toml: group 2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
