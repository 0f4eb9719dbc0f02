package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/axbind/bind"
	"github.com/ardnew/axbind/log"
)

// Check resolves every pattern and layer reference of bind files without
// reading source files or running commands.
type Check struct {
	Quiet bool `help:"Print nothing for bind files without problems" short:"q"`

	Patterns []string `arg:"" default:"axbind.toml" help:"Bind files or glob patterns" name:"bindfile" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files, err := loadBindFiles(c.Patterns)
	if err != nil {
		return err
	}

	out := outputFrom(ctx)
	x := bind.New(definitions(ctx), bind.WithLogger(log.Default()))

	total := 0

	for _, bf := range files {
		failures := x.Check(bf)
		total += len(failures)

		for _, f := range failures {
			fmt.Fprintf(out, "%s: %v\n", bf.Path, f)
		}

		if len(failures) == 0 && !c.Quiet {
			fmt.Fprintf(out, "%s: ok\n", bf.Path)
		}
	}

	if total > 0 {
		return ErrCheck.With(slog.Int("failures", total))
	}

	return nil
}
