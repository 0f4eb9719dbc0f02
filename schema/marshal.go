package schema

import "encoding/json"

// ToMap returns the bind file as nested maps and slices, in the shape it is
// declared, with defaults filled in.
func (bf *BindFile) ToMap() map[string]any {
	groups := make([]any, len(bf.Groups))
	for i, g := range bf.Groups {
		groups[i] = g.toMap()
	}

	out := map[string]any{
		"path":   bf.Path,
		"digest": bf.Digest,
		"groups": groups,
	}

	if !bf.Meta.IsZero() {
		out["meta"] = bf.Meta.toMap()
	}

	return out
}

// MarshalJSON implements json.Marshaler.
func (bf *BindFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(bf.ToMap())
}

func (g Group) toMap() map[string]any {
	captures := make([]any, len(g.Captures))
	for i, c := range g.Captures {
		captures[i] = c.toMap()
	}

	out := map[string]any{
		"name":            g.Name,
		"files":           g.Files,
		"axbind_filename": g.Filename,
		"separator":       g.Separator,
		"captures":        captures,
	}

	if !g.Meta.IsZero() {
		out["meta"] = g.Meta.toMap()
	}

	return out
}

func (c Capture) toMap() map[string]any {
	layers := make([]any, len(c.Layers))
	for i, l := range c.Layers {
		layers[i] = l.toMap()
	}

	out := c.Meta().toMap()
	out["capture"] = c.Pattern
	out["layers"] = layers

	return out
}

func (l Layer) toMap() map[string]any {
	if l.Kind == LayerMap {
		return map[string]any{"map": l.Map.ID}
	}

	out := map[string]any{"function": l.Function.ID}

	if args, ok := l.Function.Args.Get(); ok {
		out["args"] = args
	}

	return out
}
