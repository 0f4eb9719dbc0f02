package schema

import (
	"log/slog"

	"github.com/ardnew/axbind/tomlctx"
)

// Predefined errors (sentinel values).
var (
	ErrLayerShape    = tomlctx.NewError("layer must set exactly one of map or function")
	ErrLayerArgs     = tomlctx.NewError("map layer cannot take args")
	ErrPipelineShape = tomlctx.NewError("pipeline must set exactly one of binary or internal")
	ErrEmptyString   = tomlctx.NewError("value must not be empty")
)

func located(e *tomlctx.Error, ctx tomlctx.Context) *tomlctx.Error {
	return e.With(slog.String("path", ctx.String()))
}

func nonEmpty(p tomlctx.Potential) (string, error) {
	s, err := tomlctx.ExpectString(p)
	if err == nil && s == "" {
		err = located(ErrEmptyString, p.Context)
	}

	return s, err
}
