package bind

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/schema"
	"github.com/ardnew/axbind/tomlctx"
)

// fixture is a configuration root and a project directory in a temporary
// directory.
type fixture struct {
	t       *testing.T
	root    string
	project string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()

	return &fixture{
		t:       t,
		root:    filepath.Join(dir, "config"),
		project: filepath.Join(dir, "project"),
	}
}

func (f *fixture) write(path, content string) string {
	f.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		f.t.Fatal(err)
	}

	return path
}

func (f *fixture) mapFile(id, content string) {
	f.write(filepath.Join(f.root, filebase.MapsDir, id+filebase.Ext), content)
}

func (f *fixture) function(id, content string) {
	f.write(filepath.Join(f.root, filebase.FunctionsDir, id+filebase.Ext), content)
}

func (f *fixture) source(name, content string) string {
	return f.write(filepath.Join(f.project, name), content)
}

func (f *fixture) bindFile(content string) *schema.BindFile {
	f.t.Helper()

	path := f.write(filepath.Join(f.project, "axbind.toml"), content)

	bf, err := schema.LoadBindFile(path)
	if err != nil {
		f.t.Fatalf("LoadBindFile failed: %v", err)
	}

	return bf
}

func (f *fixture) executor(opts ...Option) *Executor {
	opts = append([]Option{WithLogger(log.Logger{})}, opts...)

	return New(filebase.NewAxbind(f.root), opts...)
}

func (f *fixture) read(name string) string {
	f.t.Helper()

	data, err := os.ReadFile(filepath.Join(f.project, name))
	if err != nil {
		f.t.Fatalf("read output: %v", err)
	}

	return string(data)
}

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// capture builds an inline capture from layers for use with Apply.
func capture(layers ...schema.Layer) schema.Capture {
	return schema.Capture{Context: tomlctx.Root("test"), Layers: layers}
}

func mapLayer(id string) schema.Layer {
	return schema.Layer{Kind: schema.LayerMap, Map: &schema.MapLayer{ID: id}}
}

func fnLayer(id string, args ...string) schema.Layer {
	l := &schema.FunctionLayer{ID: id}
	if args != nil {
		l.Args = optwrite.Some(args)
	}

	return schema.Layer{Kind: schema.LayerFunction, Function: l}
}
