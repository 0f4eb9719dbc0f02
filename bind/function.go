package bind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/ardnew/axbind/schema"
)

// Placeholders expanded in function arguments and stdin templates.
const (
	PlaceholderText  = "{text}"
	PlaceholderName  = "{name}"
	PlaceholderValue = "{value}"
)

// commandWaitDelay bounds how long a killed command's output is drained.
const commandWaitDelay = time.Second

// bound holds a function's rendered arguments and its parameter values.
type bound struct {
	args  []string
	named map[string]string
}

// bindArgs renders the arguments of one invocation. The layer's arguments
// replace the pipeline's declared ones when set.
func bindArgs(
	fn *schema.FunctionFile,
	layer *schema.FunctionLayer,
	text string,
) (bound, error) {
	args := layer.Args.Or(fn.Pipeline.Args())

	b := bound{args: make([]string, len(args)), named: map[string]string{}}

	if len(fn.Parameters) == 0 {
		for i, a := range args {
			b.args[i] = strings.ReplaceAll(a, PlaceholderText, text)
		}

		return b, nil
	}

	if len(args) > len(fn.Parameters) {
		return bound{}, ErrArgumentCount.Wrap(fmt.Errorf(
			"%d arguments for %d parameters", len(args), len(fn.Parameters),
		))
	}

	for _, p := range fn.Parameters {
		b.named[p] = ""
	}

	format := fn.Format()

	for i, a := range args {
		p := fn.Parameters[i]
		b.named[p] = a
		b.args[i] = strings.NewReplacer(
			PlaceholderName, p,
			PlaceholderValue, a,
			PlaceholderText, text,
		).Replace(format)
	}

	return b, nil
}

// stdin renders a stdin template.
func (b bound) stdin(tmpl, text string) string {
	pairs := make([]string, 0, 2+2*len(b.named))
	pairs = append(pairs, PlaceholderText, text)

	for name, value := range b.named {
		pairs = append(pairs, "{"+name+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// invoke applies function fn to text. proxy is the effective proxy of the
// invocation.
func (x *Executor) invoke(
	ctx context.Context,
	id string,
	fn *schema.FunctionFile,
	layer *schema.FunctionLayer,
	text, proxy string,
) (string, error) {
	b, err := bindArgs(fn, layer, text)
	if err != nil {
		return "", err
	}

	switch fn.Pipeline.Kind {
	case schema.PipelineInternal:
		name := fn.Pipeline.Internal.Name

		impl, ok := builtins[name]
		if !ok {
			return "", ErrUnknownInternal.Wrap(fmt.Errorf("%q", name)).
				With(slog.String("function", id))
		}

		if proxy != "" {
			x.logger.TraceContext(ctx, "proxy ignored by internal function",
				slog.String("function", id),
				slog.String("proxy", proxy),
			)
		}

		return impl(call{x: x, name: name, text: text, args: b.args})

	default:
		cmd := fn.Pipeline.Command

		input := text
		if tmpl, ok := cmd.Stdin.Get(); ok {
			input = b.stdin(tmpl, text)
		}

		argv := append(strings.Fields(proxy), cmd.Binary)
		argv = append(argv, b.args...)

		return x.run(ctx, argv, input, cmd.Timeout.Or(x.timeout))
	}
}

// run executes argv with input on stdin and returns its standard output
// with one trailing newline removed. A zero timeout is unbounded.
func (x *Executor) run(
	ctx context.Context,
	argv []string,
	input string,
	timeout time.Duration,
) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	cmd.WaitDelay = commandWaitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	x.logger.TraceContext(ctx, "run command",
		slog.Any("argv", argv),
		slog.Duration("timeout", timeout),
	)

	start := time.Now()
	err := cmd.Run()

	x.logger.TraceContext(ctx, "command exited",
		slog.String("binary", argv[0]),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("stdout_bytes", stdout.Len()),
	)

	if err != nil {
		cmdAttr := slog.String("command", strings.Join(argv, " "))

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrCommandTimeout.Wrap(ctx.Err()).
				With(cmdAttr, slog.Duration("timeout", timeout))
		}

		if ctx.Err() != nil {
			return "", context.Cause(ctx)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())

			cause := fmt.Errorf("exit status %d", exitErr.ExitCode())
			if msg != "" {
				cause = fmt.Errorf("%w: %s", cause, msg)
			}

			return "", ErrCommandFailed.Wrap(cause).
				With(cmdAttr, slog.Int("exit_code", exitErr.ExitCode()),
					slog.String("stderr", msg))
		}

		return "", ErrCommandSpawn.Wrap(err).With(cmdAttr)
	}

	out := stdout.String()
	out = strings.TrimSuffix(out, "\n")

	return out, nil
}
