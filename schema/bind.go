package schema

import (
	"path/filepath"
	"strings"

	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/tomlctx"
)

// DefaultSeparator is appended after every fragment of a group's output
// unless the group declares its own separator.
const DefaultSeparator = "\n"

// GroupPlaceholder in a group's output filename expands to the group name.
const GroupPlaceholder = "{group}"

// BindFile is one binding specification.
type BindFile struct {
	Context tomlctx.Context
	Path    string
	// Dir is the directory of Path. File patterns and output filenames are
	// relative to it.
	Dir    string
	Digest string
	Meta   MetaOpts
	Groups []Group
}

// Group binds a set of source files to an output file through captures.
type Group struct {
	Context   tomlctx.Context
	Name      string
	Files     []string
	Filename  string
	Separator string
	Meta      MetaOpts
	Captures  []Capture
}

// Output returns the group's output path, with the group name substituted
// and relative paths resolved against dir.
func (g Group) Output(dir string) string {
	name := strings.ReplaceAll(g.Filename, GroupPlaceholder, g.Name)

	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}

	return filepath.Join(dir, name)
}

// Capture extracts fragments from source text and runs them through
// Layers in order.
type Capture struct {
	Context tomlctx.Context
	Pattern string
	Escape  optwrite.Opt[string]
	Proxy   optwrite.Opt[string]
	Layers  []Layer
}

// Meta returns the capture-scope options.
func (c Capture) Meta() MetaOpts {
	return MetaOpts{Escape: c.Escape, Proxy: c.Proxy}
}

// LayerKind selects the variant of a [Layer].
type LayerKind uint8

// Layer kinds.
const (
	LayerMap LayerKind = iota
	LayerFunction
)

func (k LayerKind) String() string {
	if k == LayerFunction {
		return "function"
	}

	return "map"
}

// Layer is one pipeline stage. Exactly one of Map and Function is non-nil,
// as selected by Kind.
type Layer struct {
	Context  tomlctx.Context
	Kind     LayerKind
	Map      *MapLayer
	Function *FunctionLayer
}

// MapLayer looks up the current text in a map.
type MapLayer struct {
	ID string
}

// FunctionLayer invokes a function on the current text.
type FunctionLayer struct {
	ID string
	// Args replaces the function's declared arguments when set.
	Args optwrite.Opt[[]string]
}

// ID returns the identifier the layer refers to.
func (l Layer) ID() string {
	switch l.Kind {
	case LayerFunction:
		return l.Function.ID
	default:
		return l.Map.ID
	}
}

// String renders the layer the way it is written in the interactive
// pipeline syntax, such as "@double" or "prefix(v_)".
func (l Layer) String() string {
	if l.Kind == LayerMap {
		return "@" + l.Map.ID
	}

	s := l.Function.ID

	if args, ok := l.Function.Args.Get(); ok {
		s += "(" + strings.Join(args, ", ") + ")"
	}

	return s
}

// LoadBindFile reads and decodes the bind file at path.
func LoadBindFile(path string) (*BindFile, error) {
	doc, err := tomlctx.Load(path)
	if err != nil {
		return nil, err
	}

	return DecodeBindFile(doc)
}

// DecodeBindFile decodes a bind file from doc.
func DecodeBindFile(doc tomlctx.Document) (*BindFile, error) {
	bf := &BindFile{
		Context: doc.Context,
		Path:    doc.Path(),
		Dir:     filepath.Dir(doc.Path()),
		Digest:  doc.DigestString(),
	}

	var err error

	if bf.Meta, err = decodeMeta(doc.Table, "meta"); err != nil {
		return nil, err
	}

	elems, err := tomlctx.ExpectArray(doc.Get("groups"))
	if err != nil {
		return nil, err
	}

	bf.Groups = make([]Group, len(elems))

	for i, v := range elems {
		if bf.Groups[i], err = decodeGroup(v); err != nil {
			return nil, err
		}
	}

	return bf, nil
}

func decodeGroup(v tomlctx.Value) (Group, error) {
	t, err := tomlctx.ExpectTable(v.Potential())
	if err != nil {
		return Group{}, err
	}

	g := Group{Context: t.Context}

	name, err := optString(t, "name")
	if err != nil {
		return Group{}, err
	}

	g.Name = name.Or(t.Context.Path())

	if g.Files, err = tomlctx.ExpectStrings(t.Get("files")); err != nil {
		return Group{}, err
	}

	if g.Filename, err = nonEmpty(t.Get("axbind_filename")); err != nil {
		return Group{}, err
	}

	sep, err := optString(t, "separator")
	if err != nil {
		return Group{}, err
	}

	g.Separator = sep.Or(DefaultSeparator)

	if g.Meta, err = decodeMeta(t, "meta"); err != nil {
		return Group{}, err
	}

	elems, err := tomlctx.ExpectArray(t.Get("captures"))
	if err != nil {
		return Group{}, err
	}

	g.Captures = make([]Capture, len(elems))

	for i, cv := range elems {
		if g.Captures[i], err = decodeCapture(cv); err != nil {
			return Group{}, err
		}
	}

	return g, nil
}

func decodeCapture(v tomlctx.Value) (Capture, error) {
	t, err := tomlctx.ExpectTable(v.Potential())
	if err != nil {
		return Capture{}, err
	}

	c := Capture{Context: t.Context}

	if c.Pattern, err = nonEmpty(t.Get("capture")); err != nil {
		return Capture{}, err
	}

	if c.Escape, err = optString(t, "escape"); err != nil {
		return Capture{}, err
	}

	if c.Proxy, err = optString(t, "proxy"); err != nil {
		return Capture{}, err
	}

	elems, err := tomlctx.ExpectArray(t.Get("layers"))
	if err != nil {
		return Capture{}, err
	}

	c.Layers = make([]Layer, len(elems))

	for i, lv := range elems {
		if c.Layers[i], err = decodeLayer(lv); err != nil {
			return Capture{}, err
		}
	}

	return c, nil
}

func decodeLayer(v tomlctx.Value) (Layer, error) {
	t, err := tomlctx.ExpectTable(v.Potential())
	if err != nil {
		return Layer{}, err
	}

	hasMap, hasFunc := t.Has("map"), t.Has("function")
	if hasMap == hasFunc {
		return Layer{}, located(ErrLayerShape, t.Context)
	}

	l := Layer{Context: t.Context}

	if hasMap {
		if t.Has("args") {
			return Layer{}, located(ErrLayerArgs, t.Context.With("args"))
		}

		id, err := nonEmpty(t.Get("map"))
		if err != nil {
			return Layer{}, err
		}

		l.Kind, l.Map = LayerMap, &MapLayer{ID: id}

		return l, nil
	}

	id, err := nonEmpty(t.Get("function"))
	if err != nil {
		return Layer{}, err
	}

	args, err := optStrings(t, "args")
	if err != nil {
		return Layer{}, err
	}

	l.Kind, l.Function = LayerFunction, &FunctionLayer{ID: id, Args: args}

	return l, nil
}
