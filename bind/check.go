package bind

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/axbind/schema"
)

// Check resolves every reference of bf without reading source files or
// running anything: capture patterns compile, maps flatten without cycles,
// and functions load and name known internal functions.
func (x *Executor) Check(bf *schema.BindFile) []Failure {
	var failures []Failure

	for _, g := range bf.Groups {
		for _, c := range g.Captures {
			if _, err := x.patterns.capture(c.Pattern); err != nil {
				failures = append(failures, Failure{
					Group:   g.Name,
					Context: c.Context.With("capture"),
					Err:     err,
				})
			}

			for i, l := range c.Layers {
				if err := x.checkLayer(l); err != nil {
					failures = append(failures, Failure{
						Group:      g.Name,
						Identifier: l.ID(),
						Context:    l.Context,
						Err:        &LayerError{Layer: l, Index: i, Err: err},
					})
				}
			}
		}
	}

	return failures
}

func (x *Executor) checkLayer(l schema.Layer) error {
	if l.Kind == schema.LayerMap {
		_, err := x.resolver.flatten(l.Map.ID)

		return err
	}

	fn, err := x.resolver.function(l.Function.ID)
	if err != nil {
		return err
	}

	if fn.Pipeline.Kind == schema.PipelineInternal && !IsBuiltin(fn.Pipeline.Internal.Name) {
		return ErrUnknownInternal.
			Wrap(fmt.Errorf("%q", fn.Pipeline.Internal.Name)).
			With(slog.String("function", l.Function.ID))
	}

	if args, ok := l.Function.Args.Get(); ok &&
		len(fn.Parameters) > 0 && len(args) > len(fn.Parameters) {
		return ErrArgumentCount.Wrap(fmt.Errorf(
			"%d arguments for %d parameters", len(args), len(fn.Parameters),
		))
	}

	return nil
}
