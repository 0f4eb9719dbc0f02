package tomlctx

import (
	"slices"
	"strconv"
	"strings"
)

// Context is an immutable, append-only path into a configuration tree.
//
// Branching with [Context.With] or [Context.Index] returns a new Context and
// never modifies the receiver, so a parent can be reused for any number of
// sibling branches. The zero value is an empty path with no label.
type Context struct {
	parent *Context
	label  string
	seg    string
	index  int
	kind   segmentKind
}

type segmentKind uint8

const (
	segmentRoot segmentKind = iota
	segmentKey
	segmentIndex
)

// Root returns a Context whose rendering begins with label, typically the
// path of the file the tree was decoded from.
func Root(label string) Context {
	return Context{label: label, kind: segmentRoot}
}

// With returns the child of c reached through table key key.
func (c Context) With(key string) Context {
	p := c

	return Context{parent: &p, seg: key, kind: segmentKey}
}

// Index returns the child of c reached through array index i.
func (c Context) Index(i int) Context {
	p := c

	return Context{parent: &p, index: i, kind: segmentIndex}
}

// Label returns the root label of c.
func (c Context) Label() string {
	for c.parent != nil {
		c = *c.parent
	}

	return c.label
}

// Segments returns the rendered segments of c below its root, outermost
// first. Index segments are rendered as "[i]".
func (c Context) Segments() []string {
	var segs []string

	for p := &c; p != nil && p.kind != segmentRoot; p = p.parent {
		segs = append(segs, p.segment())
	}

	slices.Reverse(segs)

	return segs
}

func (c Context) segment() string {
	switch c.kind {
	case segmentKey:
		return c.seg
	case segmentIndex:
		return "[" + strconv.Itoa(c.index) + "]"
	default:
		return ""
	}
}

// Path renders the segments of c without the root label, for example
// "groups[0].captures[2]".
func (c Context) Path() string {
	var sb strings.Builder

	for i, seg := range c.Segments() {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			sb.WriteByte('.')
		}

		sb.WriteString(seg)
	}

	return sb.String()
}

// String renders c as "label: path". Either part is omitted when empty.
func (c Context) String() string {
	label, path := c.Label(), c.Path()

	switch {
	case label == "":
		return path
	case path == "":
		return label
	default:
		return label + ": " + path
	}
}

// Equal reports whether c and other describe the same path.
func (c Context) Equal(other Context) bool {
	return c.Label() == other.Label() &&
		slices.Equal(c.Segments(), other.Segments())
}
