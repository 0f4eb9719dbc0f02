package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestDumpJSON(t *testing.T) {
	p := newProject(t)
	path := p.bindFile("axbind.toml", colorsBindFile)

	var out bytes.Buffer

	d := &DumpJSON{Indent: 2, Patterns: []string{path}}
	if err := d.Run(WithOutput(p.context(), &out)); err != nil {
		t.Fatalf("DumpJSON.Run failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out.String(), err)
	}

	if doc["path"] != path {
		t.Errorf("path = %v, want %q", doc["path"], path)
	}

	groups, ok := doc["groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Fatalf("groups = %v", doc["groups"])
	}

	g := groups[0].(map[string]any)
	if g["name"] != "colors" || g["separator"] != "\n" {
		t.Errorf("group = %v", g)
	}
}

func TestDumpJSON_Compact(t *testing.T) {
	p := newProject(t)
	path := p.bindFile("axbind.toml", colorsBindFile)

	var out bytes.Buffer

	d := &DumpJSON{Patterns: []string{path}}
	if err := d.Run(WithOutput(p.context(), &out)); err != nil {
		t.Fatalf("DumpJSON.Run failed: %v", err)
	}

	if n := strings.Count(out.String(), "\n"); n != 1 {
		t.Errorf("compact output spans %d lines: %q", n, out.String())
	}
}

func TestDumpYAML_Stream(t *testing.T) {
	p := newProject(t)
	first := p.bindFile("a.toml", colorsBindFile)
	second := p.bindFile("b.toml", brokenBindFile)

	var out bytes.Buffer

	d := &DumpYAML{Indent: 2, Patterns: []string{first, second}}
	if err := d.Run(WithOutput(p.context(), &out)); err != nil {
		t.Fatalf("DumpYAML.Run failed: %v", err)
	}

	docs := strings.Split(out.String(), "---\n")
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d: %q", len(docs), out.String())
	}

	for i, want := range []string{first, second} {
		var doc map[string]any
		if err := yaml.Unmarshal([]byte(docs[i]), &doc); err != nil {
			t.Fatalf("document %d invalid: %v", i, err)
		}

		if doc["path"] != want {
			t.Errorf("document %d path = %v, want %q", i, doc["path"], want)
		}
	}
}
