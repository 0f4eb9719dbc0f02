package bind

import (
	"log/slog"

	"github.com/ardnew/axbind/pkg"
)

// GroupResult describes the outcome of one group.
type GroupResult struct {
	Name      string
	Output    string
	Files     []string
	Content   string
	Fragments int
	Written   bool
	Failures  []Failure
}

// Report is the outcome of one run of a bind file.
type Report struct {
	Path     string
	Groups   []GroupResult
	Failures []Failure
}

func (r *Report) add(g GroupResult) {
	r.Groups = append(r.Groups, g)
	r.Failures = append(r.Failures, g.Failures...)
}

// Failed reports whether any failure was recorded.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// Err returns nil if no failure was recorded, else an error wrapping every
// failure.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}

	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}

	return ErrFailures.Wrap(pkg.MakeError(errs...)).With(
		slog.String("path", r.Path),
		slog.Int("failures", len(r.Failures)),
	)
}

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	written := 0

	for _, g := range r.Groups {
		if g.Written {
			written++
		}
	}

	return slog.GroupValue(
		slog.String("path", r.Path),
		slog.Int("groups", len(r.Groups)),
		slog.Int("written", written),
		slog.Int("failures", len(r.Failures)),
	)
}
