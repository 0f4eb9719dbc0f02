package bind

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/schema"
)

// Executor applies bind files. It is safe for concurrent use, and all runs
// of one Executor share its definition cache.
type Executor struct {
	config

	defs     *filebase.Axbind
	resolver *resolver
	patterns *patterns
	programs *lru.Cache[string, *vm.Program]
}

// New returns an Executor resolving definitions from defs.
func New(defs *filebase.Axbind, opts ...Option) *Executor {
	cfg := makeConfig(opts...)

	x := &Executor{
		config:   cfg,
		defs:     defs,
		resolver: newResolver(defs),
		patterns: newPatterns(cfg.cacheSize),
	}

	size := cfg.cacheSize
	if size <= 0 {
		size = DefaultPatternCacheSize
	}

	x.programs, _ = lru.New[string, *vm.Program](size)

	return x
}

// Definitions returns the definition caches of x.
func (x *Executor) Definitions() *filebase.Axbind { return x.defs }

func (x *Executor) program(src string, env map[string]any) (*vm.Program, error) {
	if p, ok := x.programs.Get(src); ok {
		return p, nil
	}

	p, err := compileProgram(src, env)
	if err != nil {
		return nil, err
	}

	x.programs.Add(src, p)

	return p, nil
}

// Apply runs text through the layers of c in order and escapes the result.
//
// scopes are the option scopes enclosing c, outermost first. The effective
// escape merges scopes, then the options of every applied function in layer
// order, then c's own options. The effective proxy of a function merges
// scopes, the function's options, and c's options.
func (x *Executor) Apply(
	ctx context.Context,
	text string,
	c schema.Capture,
	scopes ...schema.MetaOpts,
) (string, error) {
	outer := optwrite.Fold(scopes...)
	inner := c.Meta()

	var applied schema.MetaOpts

	for i, l := range c.Layers {
		if ctx.Err() != nil {
			return "", context.Cause(ctx)
		}

		var err error

		switch l.Kind {
		case schema.LayerMap:
			text, err = x.resolver.lookup(l.Map.ID, text)

		case schema.LayerFunction:
			var fn *schema.FunctionFile

			if fn, err = x.resolver.function(l.Function.ID); err != nil {
				break
			}

			proxy := optwrite.Fold(outer, fn.Meta, inner).Proxy.Or("")

			text, err = x.invoke(ctx, l.Function.ID, fn, l.Function, text, proxy)
			applied.OptWrite(fn.Meta)
		}

		if err != nil {
			return "", &LayerError{Layer: l, Index: i, Err: err}
		}
	}

	escape := optwrite.Fold(outer, applied, inner).Escape.Or("")

	return Escape(text, escape), nil
}

// unit is the work of one capture over one file.
type unit struct {
	frags   []string
	failure *Failure
}

// plan is a group with its discovered files.
type plan struct {
	group   schema.Group
	output  string
	files   []string
	units   []unit // file-major, then capture
	failure *Failure
}

// Run applies every group of bf. Failures local to a group, file, or
// capture are collected in the report and do not stop other work. Run
// returns an error only if ctx ends before the run completes, in which case
// no further output is written.
func (x *Executor) Run(ctx context.Context, bf *schema.BindFile) (*Report, error) {
	x.logger.DebugContext(ctx, "run bind file",
		slog.String("path", bf.Path),
		slog.String("digest", bf.Digest),
		slog.Int("groups", len(bf.Groups)),
		slog.Int("jobs", x.jobs),
	)

	plans := make([]*plan, len(bf.Groups))

	for i, g := range bf.Groups {
		plans[i] = x.plan(bf, g)
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(x.jobs)

	for _, p := range plans {
		sources := make([]func() (string, error), len(p.files))
		for fi, file := range p.files {
			sources[fi] = sync.OnceValues(func() (string, error) {
				data, err := os.ReadFile(file)
				if err != nil {
					return "", ErrReadSource.Wrap(err)
				}

				return string(data), nil
			})
		}

		for fi, file := range p.files {
			for ci, c := range p.group.Captures {
				slot := &p.units[fi*len(p.group.Captures)+ci]

				eg.Go(func() error {
					if ectx.Err() != nil {
						return ectx.Err()
					}

					*slot = x.unit(ectx, bf, p.group, file, sources[fi], c)

					return nil
				})
			}
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}

	report := &Report{Path: bf.Path}

	for _, p := range plans {
		if ctx.Err() != nil {
			return report, context.Cause(ctx)
		}

		report.add(x.finish(ctx, p))
	}

	return report, nil
}

func (x *Executor) plan(bf *schema.BindFile, g schema.Group) *plan {
	p := &plan{group: g, output: g.Output(bf.Dir)}

	files, err := Discover(bf.Dir, g.Files)
	if err != nil {
		p.failure = &Failure{Group: g.Name, Context: g.Context.With("files"), Err: err}

		return p
	}

	p.files = slices.DeleteFunc(files, func(f string) bool {
		return filepath.Clean(f) == filepath.Clean(p.output)
	})
	p.units = make([]unit, len(p.files)*len(g.Captures))

	return p
}

func (x *Executor) unit(
	ctx context.Context,
	bf *schema.BindFile,
	g schema.Group,
	file string,
	source func() (string, error),
	c schema.Capture,
) unit {
	fail := func(err error) unit {
		f := &Failure{Group: g.Name, File: file, Context: c.Context, Err: err}

		var le *LayerError
		if errors.As(err, &le) {
			f.Identifier = le.Layer.ID()
			f.Context = le.Layer.Context
		}

		x.logger.DebugContext(ctx, "capture failed", slog.Any("failure", *f))

		return unit{failure: f}
	}

	re, err := x.patterns.capture(c.Pattern)
	if err != nil {
		return fail(err)
	}

	text, err := source()
	if err != nil {
		return fail(err)
	}

	var frags []string

	for _, frag := range Extract(re, text) {
		out, err := x.Apply(ctx, frag, c, bf.Meta, g.Meta)
		if err != nil {
			return fail(err)
		}

		frags = append(frags, out)
	}

	x.logger.TraceContext(ctx, "capture applied",
		slog.String("group", g.Name),
		slog.String("file", file),
		slog.String("capture", c.Pattern),
		slog.Int("fragments", len(frags)),
	)

	return unit{frags: frags}
}

// finish assembles and writes the output of p.
func (x *Executor) finish(ctx context.Context, p *plan) GroupResult {
	res := GroupResult{
		Name:   p.group.Name,
		Output: p.output,
		Files:  p.files,
	}

	if p.failure != nil {
		res.Failures = append(res.Failures, *p.failure)

		return res
	}

	var sb strings.Builder

	for _, u := range p.units {
		if u.failure != nil {
			res.Failures = append(res.Failures, *u.failure)

			continue
		}

		for _, frag := range u.frags {
			sb.WriteString(frag)
			sb.WriteString(p.group.Separator)
			res.Fragments++
		}
	}

	res.Content = sb.String()

	// An existing output is kept when the patterns match nothing.
	if len(p.files) == 0 {
		x.logger.WarnContext(ctx, "no source files matched",
			slog.String("group", res.Name),
			slog.String("output", res.Output),
			slog.Any("files", p.group.Files),
		)

		return res
	}

	if x.dryRun {
		x.logger.InfoContext(ctx, "dry run",
			slog.String("group", res.Name),
			slog.String("output", res.Output),
			slog.Int("fragments", res.Fragments),
		)

		return res
	}

	if err := writeAtomic(p.output, []byte(res.Content)); err != nil {
		res.Failures = append(res.Failures, Failure{
			Group:   res.Name,
			File:    p.output,
			Context: p.group.Context.With("axbind_filename"),
			Err:     ErrWrite.Wrap(err),
		})

		return res
	}

	res.Written = true

	x.logger.InfoContext(ctx, "wrote output",
		slog.String("group", res.Name),
		slog.String("output", res.Output),
		slog.Int("files", len(res.Files)),
		slog.Int("fragments", res.Fragments),
	)

	return res
}

// Discover expands patterns relative to dir. Files keep pattern order;
// the matches of one pattern are sorted, and a file matched by several
// patterns is listed once.
func Discover(dir string, patterns []string) ([]string, error) {
	seen := map[string]bool{}

	var files []string

	for _, pat := range patterns {
		if !filepath.IsAbs(pat) {
			pat = filepath.Join(dir, pat)
		}

		matches, err := doublestar.Glob(pat)
		if err != nil {
			return nil, ErrBadPattern.Wrap(err).With(slog.String("pattern", pat))
		}

		slices.Sort(matches)

		for _, m := range matches {
			if seen[m] {
				continue
			}

			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}

			seen[m] = true
			files = append(files, m)
		}
	}

	return files, nil
}

// writeAtomic replaces path with data so that readers observe either the
// previous content or all of data.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name)

		return err
	}

	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)

		return err
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)

		return err
	}

	return nil
}
