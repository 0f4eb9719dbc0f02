package bind

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/schema"
)

// resolver looks up definitions and flattens maps through their
// inclusions.
type resolver struct {
	defs *filebase.Axbind
	flat sync.Map // map identifier -> map[string]string
}

func newResolver(defs *filebase.Axbind) *resolver {
	return &resolver{defs: defs}
}

// classify turns a load failure of a missing file into a resolution error.
// other reports whether the identifier is defined with the other kind.
func classify(err error, id, kind string, other bool) error {
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if other {
		return ErrKindMismatch.Wrap(fmt.Errorf("%q is not a %s", id, kind)).
			With(slog.String("identifier", id))
	}

	return ErrUnresolved.Wrap(fmt.Errorf("%s %q", kind, id)).
		With(slog.String("identifier", id))
}

func (r *resolver) mapFile(id string) (*schema.MapFile, error) {
	mf, err := r.defs.Maps.Query(id)
	if err != nil {
		return nil, classify(err, id, "map", r.defs.Functions.Exists(id))
	}

	return mf, nil
}

func (r *resolver) function(id string) (*schema.FunctionFile, error) {
	fn, err := r.defs.Functions.Query(id)
	if err != nil {
		return nil, classify(err, id, "function", r.defs.Maps.Exists(id))
	}

	return fn, nil
}

// flatten returns every entry visible through map id. Entries of later
// inclusions replace those of earlier ones, and the map's own values
// replace all included entries. An inclusion cycle is an error.
func (r *resolver) flatten(id string) (map[string]string, error) {
	return r.flattenChain(id, nil)
}

func (r *resolver) flattenChain(id string, chain []string) (map[string]string, error) {
	if slices.Contains(chain, id) {
		cycle := append(slices.Clone(chain[slices.Index(chain, id):]), id)

		return nil, ErrCyclicInclusion.
			Wrap(errors.New(strings.Join(cycle, " -> "))).
			With(slog.String("identifier", id))
	}

	if v, ok := r.flat.Load(id); ok {
		return v.(map[string]string), nil
	}

	mf, err := r.mapFile(id)
	if err != nil {
		return nil, err
	}

	chain = append(chain, id)

	values := make(map[string]string, len(mf.Values))

	for _, incl := range mf.Inclusions {
		sub, err := r.flattenChain(incl, chain)
		if err != nil {
			return nil, err
		}

		maps.Copy(values, sub)
	}

	maps.Copy(values, mf.Values)

	v, _ := r.flat.LoadOrStore(id, values)

	return v.(map[string]string), nil
}

// lookup returns the value of key in map id.
func (r *resolver) lookup(id, key string) (string, error) {
	values, err := r.flatten(id)
	if err != nil {
		return "", err
	}

	v, ok := values[key]
	if !ok {
		return "", ErrNoSuchMapping.
			Wrap(fmt.Errorf("key %q in map %q", key, id)).
			With(slog.String("map", id), slog.String("key", key))
	}

	return v, nil
}
