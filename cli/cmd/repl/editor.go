package repl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/schema"
	"github.com/ardnew/axbind/tomlctx"
)

const defaultEditor = "vi"

// Skeletons offered when editing an identifier without a definition file.
const (
	mapSkeleton      = "inclusions = []\n\n[values]\n"
	functionSkeleton = "[function]\nparameters = []\n\n[function.pipeline]\ninternal = \"identity\"\n"
)

// editCommand implements [tea.ExecCommand] for the edit-validate-retry loop
// of one definition file. The definition is copied to a temp file and opened
// in the user's editor. A result that decodes is written back to path; on a
// decode error the user is prompted to re-edit.
type editCommand struct {
	path     string
	skeleton string
	decode   func(doc tomlctx.Document) error
	ctxFunc  func() context.Context
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	changed  bool
}

// newEditCommand returns an editCommand for the map or function definition
// at path.
func newEditCommand(
	ctxFunc func() context.Context,
	path string,
	isMap bool,
	logger log.Logger,
) *editCommand {
	c := &editCommand{
		path:     path,
		skeleton: functionSkeleton,
		decode: func(doc tomlctx.Document) error {
			_, err := schema.DecodeFunctionFile(doc)

			return err
		},
		ctxFunc: ctxFunc,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	if isMap {
		c.skeleton = mapSkeleton
		c.decode = func(doc tomlctx.Document) error {
			_, err := schema.DecodeMapFile(doc)

			return err
		}
	}

	return c
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied or unmodified file leaves the
// definition untouched. If the user declines to re-edit, Run returns
// [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	original, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		original, err = nil, nil
	}

	if err != nil {
		return err
	}

	content := original
	if content == nil {
		content = []byte(c.skeleton)
	}

	f, err := os.CreateTemp(os.TempDir(), "axbind-try-*"+filepath.Ext(c.path))
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(data, original) {
			return nil
		}

		doc, parseErr := tomlctx.Parse(filepath.Base(c.path), data)
		if parseErr == nil {
			parseErr = c.decode(doc)
		}

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.String("path", c.path),
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
				return err
			}

			if err := os.WriteFile(c.path, data, 0o644); err != nil {
				return err
			}

			c.changed = true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nInvalid definition: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor opens path in $EDITOR and returns the edited content. The
// editor value may carry arguments, as in "code --wait".
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	argv := strings.Fields(os.Getenv("EDITOR"))
	if len(argv) == 0 {
		argv = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
