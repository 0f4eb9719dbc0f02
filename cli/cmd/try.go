package cmd

import (
	"context"
	"time"

	"github.com/ardnew/axbind/bind"
	"github.com/ardnew/axbind/cli/cmd/repl"
	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/pkg"
)

// Try starts an interactive session evaluating layer pipelines against the
// definitions of the configured root.
type Try struct {
	Timeout time.Duration `default:"10s" help:"Timeout of each command invocation whose function sets none (0 for none)"`
}

// Run executes the try command.
func (t *Try) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cacheDir := pkg.CacheDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cacheDir = dir
		}
	}

	logger := log.Default()

	return repl.Run(ctx, func() *bind.Executor {
		return bind.New(definitions(ctx),
			bind.WithLogger(logger),
			bind.WithTimeout(t.Timeout),
		)
	}, cacheDir, logger)
}
