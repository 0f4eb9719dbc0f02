package bind

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// call is the input of one internal function invocation.
type call struct {
	x    *Executor
	name string
	text string
	args []string
}

func (c call) fail(err error) error {
	return ErrBuiltin.Wrap(err).With(slog.String("internal", c.name))
}

// want fails unless c has between lo and hi arguments; hi < 0 is unbounded.
func (c call) want(lo, hi int) error {
	n := len(c.args)
	if n >= lo && (hi < 0 || n <= hi) {
		return nil
	}

	switch {
	case hi < 0:
		return c.fail(fmt.Errorf("want at least %d arguments, got %d", lo, n))
	case lo == hi:
		return c.fail(fmt.Errorf("want %d arguments, got %d", lo, n))
	default:
		return c.fail(fmt.Errorf("want %d to %d arguments, got %d", lo, hi, n))
	}
}

type builtin func(c call) (string, error)

//nolint:gochecknoglobals
var builtins = map[string]builtin{
	"identity": func(c call) (string, error) { return c.text, c.want(0, 0) },

	"upper": caser(func() cases.Caser { return cases.Upper(language.Und) }),
	"lower": caser(func() cases.Caser { return cases.Lower(language.Und) }),
	"title": caser(func() cases.Caser { return cases.Title(language.Und) }),

	"snake":           converter(strcase.ToSnake),
	"screaming-snake": converter(strcase.ToScreamingSnake),
	"camel":           converter(strcase.ToCamel),
	"lower-camel":     converter(strcase.ToLowerCamel),
	"kebab":           converter(strcase.ToKebab),

	"trim": func(c call) (string, error) {
		if err := c.want(0, 1); err != nil {
			return "", err
		}

		if len(c.args) == 0 {
			return strings.TrimSpace(c.text), nil
		}

		return strings.Trim(c.text, c.args[0]), nil
	},

	"trim-prefix": func(c call) (string, error) {
		if err := c.want(1, 1); err != nil {
			return "", err
		}

		return strings.TrimPrefix(c.text, c.args[0]), nil
	},

	"trim-suffix": func(c call) (string, error) {
		if err := c.want(1, 1); err != nil {
			return "", err
		}

		return strings.TrimSuffix(c.text, c.args[0]), nil
	},

	"prefix": func(c call) (string, error) {
		return strings.Join(c.args, "") + c.text, nil
	},

	"suffix": func(c call) (string, error) {
		return c.text + strings.Join(c.args, ""), nil
	},

	"replace": func(c call) (string, error) {
		if len(c.args) == 0 || len(c.args)%2 != 0 {
			return "", c.fail(fmt.Errorf("want pairs of arguments, got %d", len(c.args)))
		}

		return strings.NewReplacer(c.args...).Replace(c.text), nil
	},

	"regex-replace": func(c call) (string, error) {
		if err := c.want(2, 2); err != nil {
			return "", err
		}

		re, err := c.x.patterns.compile(c.args[0])
		if err != nil {
			return "", c.fail(ErrBadRegex.Wrap(err).With(slog.String("pattern", c.args[0])))
		}

		return re.ReplaceAllString(c.text, c.args[1]), nil
	},

	"quote": func(c call) (string, error) {
		return strconv.Quote(c.text), c.want(0, 0)
	},

	"unquote": func(c call) (string, error) {
		if err := c.want(0, 0); err != nil {
			return "", err
		}

		s, err := strconv.Unquote(c.text)
		if err != nil {
			return "", c.fail(err)
		}

		return s, nil
	},

	"repeat": func(c call) (string, error) {
		if err := c.want(1, 2); err != nil {
			return "", err
		}

		n, err := strconv.Atoi(c.args[0])
		if err != nil || n < 0 {
			return "", c.fail(fmt.Errorf("invalid count %q", c.args[0]))
		}

		sep := ""
		if len(c.args) > 1 {
			sep = c.args[1]
		}

		return strings.Join(slices.Repeat([]string{c.text}, n), sep), nil
	},

	// path-prefix prepends its arguments to the path list in the text.
	"path-prefix": func(c call) (string, error) {
		return mung.Make(
			mung.WithSubjectItems(c.text),
			mung.WithDelim(string(os.PathListSeparator)),
			mung.WithPrefixItems(c.args...),
		).String(), nil
	},

	// env replaces the text with the environment variable it names, or with
	// the optional default if the variable is unset.
	"env": func(c call) (string, error) {
		if err := c.want(0, 1); err != nil {
			return "", err
		}

		if v, ok := os.LookupEnv(c.text); ok {
			return v, nil
		}

		if len(c.args) == 1 {
			return c.args[0], nil
		}

		return "", c.fail(fmt.Errorf("environment variable %q is not set", c.text))
	},

	// expr evaluates its first argument as an expr-lang program with the
	// text and the remaining arguments in scope.
	"expr": func(c call) (string, error) {
		if err := c.want(1, -1); err != nil {
			return "", err
		}

		env := map[string]any{"text": c.text, "args": c.args[1:]}

		program, err := c.x.program(c.args[0], env)
		if err != nil {
			return "", c.fail(err)
		}

		out, err := vm.Run(program, env)
		if err != nil {
			return "", c.fail(err)
		}

		return fmt.Sprint(out), nil
	},
}

// caser adapts a [cases.Caser] constructor. Casers are stateful, so every
// call gets its own.
func caser(mk func() cases.Caser) builtin {
	return func(c call) (string, error) {
		if err := c.want(0, 0); err != nil {
			return "", err
		}

		return mk().String(c.text), nil
	}
}

func converter(fn func(string) string) builtin {
	return func(c call) (string, error) {
		return fn(c.text), c.want(0, 0)
	}
}

// Builtins returns the names of the internal functions in sorted order.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// IsBuiltin reports whether name is an internal function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]

	return ok
}

// compileProgram compiles an expr-lang source against env.
func compileProgram(src string, env map[string]any) (*vm.Program, error) {
	return expr.Compile(src, expr.Env(env))
}
