package tomlctx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upper.toml")

	src := "[function.pipeline]\ninternal = \"upper\"\n"
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if doc.Path() != path {
		t.Errorf("Path() = %q, want %q", doc.Path(), path)
	}

	pipeline, err := doc.Traverse("function", "pipeline")
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if s, _ := ExpectString(pipeline.Get("internal")); s != "upper" {
		t.Errorf("internal = %q", s)
	}

	again, err := Parse("other", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if again.Digest != doc.Digest {
		t.Error("identical sources produced different digests")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, ErrReadFile) {
		t.Errorf("missing file: expected ErrReadFile, got %v", err)
	}

	if _, err := Parse("broken.toml", []byte("values = [")); !errors.Is(err, ErrParse) {
		t.Errorf("malformed: expected ErrParse, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse("empty.toml", nil)
	if err != nil {
		t.Fatal(err)
	}

	if doc.Map == nil || len(doc.Map) != 0 {
		t.Errorf("expected empty table, got %v", doc.Map)
	}
}
