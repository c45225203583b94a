package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/lkr/internal"
	"github.com/starford/lkr/internal/printer"
	"github.com/starford/lkr/internal/repo"
	pkgconfig "github.com/starford/lkr/pkg/config"
)

// env is the per-invocation state shared by every command.
type env struct {
	cfg    *internal.Config
	logger *slog.Logger
	out    *printer.Printer
}

func loadEnv(cmd *cli.Command) (*env, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	root := cmd.Root()
	logger := slog.New(slog.NewJSONHandler(root.ErrWriter, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	var popts []printer.Option
	if cmd.Bool("no-color") {
		popts = append(popts, printer.WithColor(false))
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		out:    printer.New(root.Writer, root.ErrWriter, popts...),
	}, nil
}

// discover locates the repository enclosing the --dir start directory.
func (e *env) discover(cmd *cli.Command) (*repo.Repo, error) {
	return repo.Discover(cmd.String("dir"), repo.WithLogger(e.logger))
}

// normalizeID applies the lenient form users type ids in; the parser itself
// stays strict.
func normalizeID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() < n {
		return fmt.Errorf("%s: expected %d argument(s): %s", cmd.Name, n, cmd.ArgsUsage)
	}
	return nil
}
