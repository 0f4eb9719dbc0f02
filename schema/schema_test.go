package schema

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/tomlctx"
)

const bindSource = `
[meta]
escape = "json"

[[groups]]
name = "headers"
files = ["include/*.h", "src/*.h"]
axbind_filename = "gen/{group}.txt"

[[groups.captures]]
capture = 'BIND\((\w+)\)'
escape = "none"
layers = [{ map = "double" }, { function = "upper" }, { function = "prefix", args = ["v_"] }]

[[groups]]
files = ["*.c"]
axbind_filename = "out.c"
separator = ","

[groups.meta]
proxy = "env"

[[groups.captures]]
capture = 'X'
layers = []
`

func parse(t *testing.T, src string) tomlctx.Document {
	t.Helper()

	doc, err := tomlctx.Parse(filepath.Join("proj", "axbind.toml"), []byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	return doc
}

func TestDecodeBindFile(t *testing.T) {
	bf, err := DecodeBindFile(parse(t, bindSource))
	if err != nil {
		t.Fatalf("DecodeBindFile failed: %v", err)
	}

	if bf.Dir != "proj" {
		t.Errorf("Dir = %q", bf.Dir)
	}

	if v, _ := bf.Meta.Escape.Get(); v != "json" {
		t.Errorf("global escape = %q", v)
	}

	if len(bf.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(bf.Groups))
	}

	g := bf.Groups[0]
	if g.Name != "headers" || g.Separator != DefaultSeparator {
		t.Errorf("group 0 = %q sep %q", g.Name, g.Separator)
	}

	if got, want := g.Output(bf.Dir), filepath.Join("proj", "gen", "headers.txt"); got != want {
		t.Errorf("Output() = %q, want %q", got, want)
	}

	c := g.Captures[0]

	got := make([]string, len(c.Layers))
	for i, l := range c.Layers {
		got[i] = l.String()
	}

	want := []string{"@double", "upper", "prefix(v_)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}

	if c.Layers[1].Function.Args.IsSet() {
		t.Error("upper layer has args set")
	}

	g1 := bf.Groups[1]
	if g1.Name != "groups[1]" || g1.Separator != "," {
		t.Errorf("group 1 = %q sep %q", g1.Name, g1.Separator)
	}

	if v, _ := g1.Meta.Proxy.Get(); v != "env" {
		t.Errorf("group proxy = %q", v)
	}

	if len(g1.Captures[0].Layers) != 0 {
		t.Errorf("expected no layers, got %v", g1.Captures[0].Layers)
	}

	if ctx := c.Layers[2].Context.String(); ctx !=
		filepath.Join("proj", "axbind.toml")+": groups[0].captures[0].layers[2]" {
		t.Errorf("layer context = %q", ctx)
	}
}

func TestDecodeBindFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
	}{
		{"no groups", `[meta]`, tomlctx.ErrNoKey},
		{"groups not array", `groups = "x"`, tomlctx.ErrWrongType},
		{
			"missing filename",
			"[[groups]]\nfiles = []\ncaptures = []\n",
			tomlctx.ErrNoKey,
		},
		{
			"both map and function",
			"[[groups]]\nfiles = []\naxbind_filename = \"o\"\n" +
				"[[groups.captures]]\ncapture = \"x\"\n" +
				"layers = [{ map = \"a\", function = \"b\" }]\n",
			ErrLayerShape,
		},
		{
			"neither map nor function",
			"[[groups]]\nfiles = []\naxbind_filename = \"o\"\n" +
				"[[groups.captures]]\ncapture = \"x\"\nlayers = [{ args = [] }]\n",
			ErrLayerShape,
		},
		{
			"map with args",
			"[[groups]]\nfiles = []\naxbind_filename = \"o\"\n" +
				"[[groups.captures]]\ncapture = \"x\"\n" +
				"layers = [{ map = \"a\", args = [\"b\"] }]\n",
			ErrLayerArgs,
		},
		{
			"empty capture",
			"[[groups]]\nfiles = []\naxbind_filename = \"o\"\n" +
				"[[groups.captures]]\ncapture = \"\"\nlayers = []\n",
			ErrEmptyString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBindFile(parse(t, tt.src))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestDecodeMapFile(t *testing.T) {
	mf, err := DecodeMapFile(parse(t, `
inclusions = ["base", "extra"]

[values]
a = "aa"
b = "bb"
`))
	if err != nil {
		t.Fatal(err)
	}

	want := &MapFile{
		Context:    mf.Context,
		Inclusions: []string{"base", "extra"},
		Values:     map[string]string{"a": "aa", "b": "bb"},
	}

	if diff := cmp.Diff(want, mf, cmp.Comparer(tomlctx.Context.Equal)); diff != "" {
		t.Errorf("map file mismatch (-want +got):\n%s", diff)
	}

	empty, err := DecodeMapFile(parse(t, ""))
	if err != nil {
		t.Fatal(err)
	}

	if empty.Values == nil || len(empty.Inclusions) != 0 {
		t.Errorf("empty map file = %+v", empty)
	}

	if _, err := DecodeMapFile(parse(t, "[values]\na = 1\n")); !errors.Is(err, tomlctx.ErrWrongType) {
		t.Errorf("expected ErrWrongType, got %v", err)
	}
}

func TestDecodeFunctionFile(t *testing.T) {
	ff, err := DecodeFunctionFile(parse(t, `
[meta]
escape = "shell"

[function]
parameters = ["flag"]
parameter_format = "--{name}={value}"

[function.pipeline]
binary = "tr"
args = ["a-z", "A-Z"]
stdin = "{text}\n"
timeout = "2s"
`))
	if err != nil {
		t.Fatal(err)
	}

	if ff.Pipeline.Kind != PipelineCommand {
		t.Fatalf("kind = %v", ff.Pipeline.Kind)
	}

	cmd := ff.Pipeline.Command
	if cmd.Binary != "tr" || cmd.Timeout.Or(0) != 2*time.Second {
		t.Errorf("command = %+v", cmd)
	}

	if diff := cmp.Diff([]string{"a-z", "A-Z"}, ff.Pipeline.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	if ff.Format() != "--{name}={value}" {
		t.Errorf("Format() = %q", ff.Format())
	}

	internal, err := DecodeFunctionFile(parse(t, "[function.pipeline]\ninternal = \"upper\"\n"))
	if err != nil {
		t.Fatal(err)
	}

	if internal.Pipeline.Kind != PipelineInternal ||
		internal.Pipeline.Internal.Name != "upper" ||
		internal.Format() != DefaultParameterFormat {
		t.Errorf("internal = %+v", internal.Pipeline)
	}
}

func TestDecodeFunctionFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
	}{
		{"no function", "", tomlctx.ErrNoKey},
		{"no pipeline", "[function]\n", tomlctx.ErrNoKey},
		{"empty pipeline", "[function.pipeline]\n", ErrPipelineShape},
		{
			"both kinds",
			"[function.pipeline]\nbinary = \"x\"\ninternal = \"y\"\n",
			ErrPipelineShape,
		},
		{
			"bad timeout",
			"[function.pipeline]\nbinary = \"x\"\ntimeout = \"later\"\n",
			tomlctx.ErrWrongType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFunctionFile(parse(t, tt.src))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestMetaOpts_OverriddenBy(t *testing.T) {
	global := MetaOpts{}
	global.Escape.Write(optwrite.Some("json"))
	global.Proxy.Write(optwrite.Some("env"))

	capture := MetaOpts{}
	capture.Escape.Write(optwrite.Some("none"))

	got := global.OverriddenBy(capture)

	if v, _ := got.Escape.Get(); v != "none" {
		t.Errorf("escape = %q", v)
	}

	if v, _ := got.Proxy.Get(); v != "env" {
		t.Errorf("proxy = %q", v)
	}
}

func TestBindFile_ToMap(t *testing.T) {
	bf, err := DecodeBindFile(parse(t, bindSource))
	if err != nil {
		t.Fatal(err)
	}

	m := bf.ToMap()

	groups, ok := m["groups"].([]any)
	if !ok || len(groups) != 2 {
		t.Fatalf("groups = %v", m["groups"])
	}

	g0 := groups[0].(map[string]any)
	if g0["name"] != "headers" {
		t.Errorf("name = %v", g0["name"])
	}

	if _, ok := m["meta"]; !ok {
		t.Error("meta missing")
	}
}
