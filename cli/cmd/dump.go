package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/axbind/schema"
)

// Dump prints parsed bind files with every default filled in.
type Dump struct {
	JSON DumpJSON `cmd:"" help:"Print as JSON."`
	YAML DumpYAML `cmd:"" help:"Print as YAML."`
}

// DumpJSON prints each bind file as a JSON document.
type DumpJSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Patterns []string `arg:"" default:"axbind.toml" help:"Bind files or glob patterns" name:"bindfile" optional:""`
}

// Run executes the json command.
func (j *DumpJSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files, err := loadBindFiles(j.Patterns)
	if err != nil {
		return err
	}

	return writeJSON(outputFrom(ctx), files, j.Indent)
}

func writeJSON(w io.Writer, files []*schema.BindFile, indent int) error {
	for _, bf := range files {
		var (
			data []byte
			err  error
		)

		if indent > 0 {
			data, err = json.MarshalIndent(bf.ToMap(), "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(bf.ToMap())
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}

	return nil
}

// DumpYAML prints the bind files as a YAML stream.
type DumpYAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`

	Patterns []string `arg:"" default:"axbind.toml" help:"Bind files or glob patterns" name:"bindfile" optional:""`
}

// Run executes the yaml command.
func (y *DumpYAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files, err := loadBindFiles(y.Patterns)
	if err != nil {
		return err
	}

	return writeYAML(ctx, outputFrom(ctx), files, y.Indent)
}

func writeYAML(
	ctx context.Context,
	w io.Writer,
	files []*schema.BindFile,
	indent int,
) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	for i, bf := range files {
		data, err := yaml.MarshalContext(ctx, bf.ToMap(), opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}

		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	return nil
}
