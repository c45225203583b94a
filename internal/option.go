package internal

import (
	"log/slog"

	"github.com/starford/lkr/internal/repo"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	repo   *repo.Repo
	logger *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRepo sets the repository to serve.
func WithRepo(r *repo.Repo) Option {
	return func(a *application) {
		a.repo = r
	}
}

// WithLogger sets the logger. Without it Run logs JSON to stderr at the
// configured level.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
