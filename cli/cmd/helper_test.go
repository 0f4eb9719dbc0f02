package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/axbind/filebase"
)

// project is a definition root and a directory of bind files.
type project struct {
	t    *testing.T
	root string
	dir  string
}

func newProject(t *testing.T) *project {
	t.Helper()

	base := t.TempDir()

	p := &project{
		t:    t,
		root: filepath.Join(base, "config"),
		dir:  filepath.Join(base, "project"),
	}

	p.write(filepath.Join(p.root, filebase.MapsDir, "colors.toml"),
		"[values]\nred = \"#f00\"\ngreen = \"#0f0\"\n")
	p.write(filepath.Join(p.root, filebase.FunctionsDir, "upper.toml"),
		"[function.pipeline]\ninternal = \"upper\"\n")

	return p
}

func (p *project) write(path, content string) string {
	p.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		p.t.Fatal(err)
	}

	return path
}

// bindFile writes a bind file named name into the project directory.
func (p *project) bindFile(name, content string) string {
	return p.write(filepath.Join(p.dir, name), content)
}

func (p *project) source(name, content string) string {
	return p.write(filepath.Join(p.dir, name), content)
}

func (p *project) read(name string) string {
	p.t.Helper()

	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		p.t.Fatal(err)
	}

	return string(data)
}

func (p *project) context() context.Context {
	return WithRoot(context.Background(), p.root)
}

const colorsBindFile = `
[[groups]]
name = "colors"
files = ["*.src"]
axbind_filename = "out.txt"

[[groups.captures]]
capture = 'color=(\w+)'
layers = [{ map = "colors" }, { function = "upper" }]
`

const brokenBindFile = `
[[groups]]
files = ["*.src"]
axbind_filename = "broken.txt"

[[groups.captures]]
capture = 'color=(\w+)'
layers = [{ map = "missing" }]
`
