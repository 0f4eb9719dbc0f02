package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ardnew/axbind/cli/cmd"
	"github.com/ardnew/axbind/log"
	"github.com/ardnew/axbind/pkg"
)

// CLI is the top-level command-line interface for axbind.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Config  string   `default:"${configDir}" help:"Definition root containing functions/ and maps/" short:"c" type:"path"`
	EnvFile []string `                       help:"Load environment variables from file(s)"                    type:"existingfile" name:"env-file"`

	Apply cmd.Apply `cmd:"" default:"withargs" help:"Generate output files from bind files"`
	Check cmd.Check `cmd:""                    help:"Resolve every reference in bind files without running them"`
	Dump  cmd.Dump  `cmd:""                    help:"Print parsed bind files"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
	Try   cmd.Try   `cmd:""                    help:"Evaluate layer pipelines interactively"`
}

// Run executes the axbind CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cachePath(),
		"configDir":          configPath(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if len(cli.EnvFile) > 0 {
		if err := godotenv.Load(cli.EnvFile...); err != nil {
			return cmd.ErrEnvFile.Wrap(err).
				With(slog.Any("files", cli.EnvFile))
		}
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithRoot(ctx, cli.Config)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and --pprof-mode is set.
	defer cli.Pprof.start(ctx)()

	log.TraceContext(ctx, "command selected",
		slog.String("command", ktx.Command()),
		slog.String("root", cli.Config),
	)

	return ktx.Run(ctx, &cli)
}
