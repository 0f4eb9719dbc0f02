// Package filebase caches definition files loaded on demand from a
// directory, parsing each identifier at most once per run.
package filebase

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/axbind/schema"
	"github.com/ardnew/axbind/tomlctx"
)

// Ext is the file extension of definition files.
const Ext = ".toml"

// Predefined errors (sentinel values).
var (
	ErrInvalidIdentifier = tomlctx.NewError("invalid identifier")
	ErrLoad              = tomlctx.NewError("failed to load definition")
)

// Loader reads and decodes the definition file at path.
type Loader[T any] func(path string) (*T, error)

// Filebase maps identifiers to definitions decoded from files named
// root/identifier.toml. It is safe for concurrent use.
//
// The first query for an identifier loads its file. Concurrent queries for
// the same identifier wait for that load and share its result, including a
// failed result. Entries are never evicted.
type Filebase[T any] struct {
	root string
	load Loader[T]

	mu    sync.RWMutex
	slots map[string]*slot[T]
}

type slot[T any] struct {
	once sync.Once
	def  *T
	err  error
}

// New returns a Filebase reading definitions from root with load.
func New[T any](root string, load Loader[T]) *Filebase[T] {
	return &Filebase[T]{root: root, load: load, slots: map[string]*slot[T]{}}
}

// Root returns the directory definitions are read from.
func (f *Filebase[T]) Root() string { return f.root }

// Path returns the file that defines id.
func (f *Filebase[T]) Path(id string) string {
	return filepath.Join(f.root, filepath.FromSlash(id)+Ext)
}

// Query returns the definition of id, loading it on first use.
// Every query for the same id returns the same pointer.
func (f *Filebase[T]) Query(id string) (*T, error) {
	if err := Validate(id); err != nil {
		return nil, err
	}

	s := f.slot(id)

	s.once.Do(func() {
		def, err := f.load(f.Path(id))
		if err != nil {
			s.err = ErrLoad.Wrap(err).With(
				slog.String("identifier", id),
				slog.String("root", f.root),
			)

			return
		}

		s.def = def
	})

	return s.def, s.err
}

func (f *Filebase[T]) slot(id string) *slot[T] {
	f.mu.RLock()
	s, ok := f.slots[id]
	f.mu.RUnlock()

	if ok {
		return s
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok = f.slots[id]; !ok {
		s = &slot[T]{}
		f.slots[id] = s
	}

	return s
}

// Exists reports whether a definition file for id exists, without loading
// it.
func (f *Filebase[T]) Exists(id string) bool {
	if Validate(id) != nil {
		return false
	}

	info, err := os.Stat(f.Path(id))

	return err == nil && !info.IsDir()
}

// Identifiers lists every identifier with a definition file under the root,
// in sorted order. Files in subdirectories are named with slash-separated
// identifiers. A missing root has no identifiers.
func (f *Filebase[T]) Identifiers() ([]string, error) {
	var ids []string

	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != Ext {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}

		ids = append(ids, filepath.ToSlash(strings.TrimSuffix(rel, Ext)))

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	slices.Sort(ids)

	return ids, nil
}

// Validate reports whether id can name a file below a root.
func Validate(id string) error {
	invalid := func(reason string) error {
		return ErrInvalidIdentifier.Wrap(errors.New(reason)).
			With(slog.String("identifier", id))
	}

	switch {
	case id == "":
		return invalid("empty")
	case strings.ContainsRune(id, 0):
		return invalid("contains NUL")
	case filepath.IsAbs(id) || strings.HasPrefix(id, "/"):
		return invalid("absolute")
	case !filepath.IsLocal(filepath.FromSlash(id)):
		return invalid("escapes root")
	}

	return nil
}

// Axbind holds the function and map definitions below a configuration
// root.
type Axbind struct {
	Functions *Filebase[schema.FunctionFile]
	Maps      *Filebase[schema.MapFile]
}

// Subdirectories of a configuration root.
const (
	FunctionsDir = "functions"
	MapsDir      = "maps"
)

// NewAxbind returns the definition caches below root.
func NewAxbind(root string) *Axbind {
	return &Axbind{
		Functions: New(filepath.Join(root, FunctionsDir), schema.LoadFunctionFile),
		Maps:      New(filepath.Join(root, MapsDir), schema.LoadMapFile),
	}
}
