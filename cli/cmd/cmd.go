package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/axbind/bind"
	"github.com/ardnew/axbind/filebase"
	"github.com/ardnew/axbind/pkg"
	"github.com/ardnew/axbind/schema"
)

type (
	contextKey struct{}
	rootKey    struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithRoot returns a new context.Context selecting root as the definition
// root, the directory holding functions/ and maps/.
func WithRoot(ctx context.Context, root string) context.Context {
	return context.WithValue(ctx, rootKey{}, root)
}

// rootFrom returns the definition root stored by [WithRoot], or
// [pkg.ConfigDir].
func rootFrom(ctx context.Context) string {
	if root, ok := ctx.Value(rootKey{}).(string); ok && root != "" {
		return root
	}

	return pkg.ConfigDir()
}

// WithOutput returns a new context.Context whose commands print to w
// instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// definitions returns the function and map definitions under the root of
// ctx.
func definitions(ctx context.Context) *filebase.Axbind {
	return filebase.NewAxbind(rootFrom(ctx))
}

// bindFiles expands patterns relative to the working directory. Every
// pattern must match at least one file.
func bindFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultBindFile}
	}

	var paths []string

	for _, pat := range patterns {
		matches, err := bind.Discover("", []string{pat})
		if err != nil {
			return nil, err
		}

		if len(matches) == 0 {
			return nil, ErrNoMatch.With(slog.String("pattern", pat))
		}

		paths = append(paths, matches...)
	}

	return dedup(paths), nil
}

func dedup(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]

	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	return out
}

// loadBindFiles loads every bind file matched by patterns, stopping at the
// first that fails to load.
func loadBindFiles(patterns []string) ([]*schema.BindFile, error) {
	paths, err := bindFiles(patterns)
	if err != nil {
		return nil, err
	}

	files := make([]*schema.BindFile, 0, len(paths))

	for _, path := range paths {
		bf, err := schema.LoadBindFile(path)
		if err != nil {
			return nil, ErrLoad.Wrap(err).With(slog.String("path", path))
		}

		files = append(files, bf)
	}

	return files, nil
}
