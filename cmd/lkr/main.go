package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/printer"
)

var version = "dev"

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "lkr",
		Usage:     "Local knowledge repository of Markdown entries with validation, indexing and search",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to application config file",
				Sources: cli.EnvVars("LKR_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Start directory for repository discovery",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			newCommand(),
			getCommand(),
			catCommand(),
			searchCommand(),
			validateCommand(),
			indexCommand(),
			lsCommand(),
			backlinksCommand(),
			rmCommand(),
			fixCommand(),
			watchCommand(),
			mcpCommand(),
		},
	}
}

// exitCode renders err and returns the process exit status. Domain errors get
// a one-line message; anything else is logged with its natural text.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errReported) {
		return 1
	}
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		printer.New(io.Discard, stderr).Error(err)
		return 1
	}
	slog.New(slog.NewJSONHandler(stderr, nil)).Error("application error", slog.String("error", err.Error()))
	return 1
}

func main() {
	cmd := newApp(os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}
