package schema

import (
	"time"

	"github.com/ardnew/axbind/optwrite"
	"github.com/ardnew/axbind/tomlctx"
)

// DefaultParameterFormat renders each bound argument as its bare value.
const DefaultParameterFormat = "{value}"

// MapFile is a named lookup table, composed beneath the maps it includes.
type MapFile struct {
	Context    tomlctx.Context
	Inclusions []string
	Values     map[string]string
}

// FunctionFile is a named callable.
type FunctionFile struct {
	Context    tomlctx.Context
	Meta       MetaOpts
	Parameters []string
	// ParameterFormat renders each argument bound to a parameter. It may
	// refer to {name}, {value}, and {text}.
	ParameterFormat optwrite.Opt[string]
	Pipeline        Pipeline
}

// Format returns the parameter format, or [DefaultParameterFormat].
func (f FunctionFile) Format() string {
	return f.ParameterFormat.Or(DefaultParameterFormat)
}

// PipelineKind selects the variant of a [Pipeline].
type PipelineKind uint8

// Pipeline kinds.
const (
	PipelineCommand PipelineKind = iota
	PipelineInternal
)

func (k PipelineKind) String() string {
	if k == PipelineInternal {
		return "internal"
	}

	return "command"
}

// Pipeline is the body of a function. Exactly one of Command and Internal
// is non-nil, as selected by Kind.
type Pipeline struct {
	Context  tomlctx.Context
	Kind     PipelineKind
	Command  *Command
	Internal *Internal
}

// Args returns the arguments declared by the pipeline.
func (p Pipeline) Args() []string {
	switch p.Kind {
	case PipelineInternal:
		return p.Internal.Args
	default:
		return p.Command.Args
	}
}

// Command runs an external program.
type Command struct {
	Binary  string
	Stdin   optwrite.Opt[string]
	Args    []string
	Timeout optwrite.Opt[time.Duration]
}

// Internal dispatches to a built-in transform.
type Internal struct {
	Name string
	Args []string
}

// LoadMapFile reads and decodes the map file at path.
func LoadMapFile(path string) (*MapFile, error) {
	doc, err := tomlctx.Load(path)
	if err != nil {
		return nil, err
	}

	return DecodeMapFile(doc)
}

// DecodeMapFile decodes a map file from doc.
func DecodeMapFile(doc tomlctx.Document) (*MapFile, error) {
	mf := &MapFile{Context: doc.Context}

	incl, err := optStrings(doc.Table, "inclusions")
	if err != nil {
		return nil, err
	}

	mf.Inclusions = incl.Or(nil)

	values, ok, err := tomlctx.Optional(tomlctx.ExpectStringMap(doc.Get("values")))
	if err != nil {
		return nil, err
	}

	if !ok {
		values = map[string]string{}
	}

	mf.Values = values

	return mf, nil
}

// LoadFunctionFile reads and decodes the function file at path.
func LoadFunctionFile(path string) (*FunctionFile, error) {
	doc, err := tomlctx.Load(path)
	if err != nil {
		return nil, err
	}

	return DecodeFunctionFile(doc)
}

// DecodeFunctionFile decodes a function file from doc.
func DecodeFunctionFile(doc tomlctx.Document) (*FunctionFile, error) {
	ff := &FunctionFile{Context: doc.Context}

	var err error

	if ff.Meta, err = decodeMeta(doc.Table, "meta"); err != nil {
		return nil, err
	}

	fn, err := tomlctx.ExpectTable(doc.Get("function"))
	if err != nil {
		return nil, err
	}

	params, err := optStrings(fn, "parameters")
	if err != nil {
		return nil, err
	}

	ff.Parameters = params.Or(nil)

	if ff.ParameterFormat, err = optString(fn, "parameter_format"); err != nil {
		return nil, err
	}

	pt, err := tomlctx.ExpectTable(fn.Get("pipeline"))
	if err != nil {
		return nil, err
	}

	if ff.Pipeline, err = decodePipeline(pt); err != nil {
		return nil, err
	}

	return ff, nil
}

func decodePipeline(t tomlctx.Table) (Pipeline, error) {
	hasBinary, hasInternal := t.Has("binary"), t.Has("internal")
	if hasBinary == hasInternal {
		return Pipeline{}, located(ErrPipelineShape, t.Context)
	}

	p := Pipeline{Context: t.Context}

	args, err := optStrings(t, "args")
	if err != nil {
		return Pipeline{}, err
	}

	if hasInternal {
		name, err := nonEmpty(t.Get("internal"))
		if err != nil {
			return Pipeline{}, err
		}

		p.Kind = PipelineInternal
		p.Internal = &Internal{Name: name, Args: args.Or(nil)}

		return p, nil
	}

	c := &Command{Args: args.Or(nil)}

	if c.Binary, err = nonEmpty(t.Get("binary")); err != nil {
		return Pipeline{}, err
	}

	if c.Stdin, err = optString(t, "stdin"); err != nil {
		return Pipeline{}, err
	}

	timeout, ok, err := tomlctx.Optional(tomlctx.ExpectDuration(t.Get("timeout")))
	if err != nil {
		return Pipeline{}, err
	}

	c.Timeout = optwrite.Maybe(timeout, ok)

	p.Kind, p.Command = PipelineCommand, c

	return p, nil
}
