package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/axbind/bind"
	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/schema"
)

// Apply generates the output files declared by bind files.
type Apply struct {
	Jobs    int           `default:"0"  help:"Maximum captures evaluated concurrently (0 for one per CPU)" short:"j"`
	Timeout time.Duration `default:"0s" help:"Timeout of each command invocation whose function sets none (0 for none)"`
	DryRun  bool          `             help:"Evaluate every capture without writing output files"        short:"n"`

	Patterns []string `arg:"" default:"axbind.toml" help:"Bind files or glob patterns" name:"bindfile" optional:""`
}

// Run executes the apply command. A bind file that fails to load is
// skipped; failures inside a capture are logged and leave the rest of the
// run unaffected. Run returns [ErrFailures] if anything failed.
func (a *Apply) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	paths, err := bindFiles(a.Patterns)
	if err != nil {
		return err
	}

	x := bind.New(definitions(ctx),
		bind.WithLogger(log.Default()),
		bind.WithJobs(a.Jobs),
		bind.WithTimeout(a.Timeout),
		bind.WithDryRun(a.DryRun),
	)

	var failures, broken int

	for _, path := range paths {
		bf, err := schema.LoadBindFile(path)
		if err != nil {
			log.ErrorContext(ctx, "skipped bind file",
				slog.String("path", path),
				slog.Any("error", err),
			)

			broken++

			continue
		}

		report, err := x.Run(ctx, bf)
		if err != nil {
			return err
		}

		for _, f := range report.Failures {
			log.ErrorContext(ctx, "capture failed", slog.Any("failure", f))
		}

		failures += len(report.Failures)

		log.DebugContext(ctx, "applied bind file", slog.Any("report", report))
	}

	if failures > 0 || broken > 0 {
		return ErrFailures.With(
			slog.Int("failures", failures),
			slog.Int("skipped", broken),
		)
	}

	return nil
}
