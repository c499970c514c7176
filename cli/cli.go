package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "specgo"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Incremental selection for behavior-driven spec suites",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "Path to the specgo config file",
					Value:   ConfigFile,
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "affected",
		Usage:     "Print the spec files affected by a set of changed paths",
		ArgsUsage: "PATH [PATH...]",
		Action:    app.affected,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Dependency manifest path (overrides config)",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "watch",
		Usage:  "Watch the working tree and print affected spec files per change batch",
		Action: app.watch,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Dependency manifest path (overrides config)",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Directory to watch",
				Value: ".",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the artifact cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show entry count and total size",
				Action: app.cacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cache entries",
				Action: app.cacheClear,
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List previous runs",
		Action: app.list,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Filter by working directory substring",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// loadConfig reads the config named by the global --config flag.
func (a *App) loadConfig(ctx *cli.Context) (*Config, error) {
	path := ctx.String("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", path).Msg("Loaded configuration")
	return cfg, nil
}
