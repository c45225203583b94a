// Package internal wires the long-running watch mode: an initial catalog
// sync and index write, then a file watcher that keeps both current.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/repo"
)

// indexDebounce delays index.json regeneration after a burst of changes.
const indexDebounce = 500 * time.Millisecond

// OpenCatalog opens the catalog configured for r and brings it up to date.
func OpenCatalog(cfg *Config, r *repo.Repo, logger *slog.Logger) (*catalog.DB, error) {
	path := cfg.Catalog.Resolve(r)
	if err := os.MkdirAll(r.MetaDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create meta dir: %w", err)
	}
	db, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	st, err := catalog.Sync(db, r, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sync catalog: %w", err)
	}
	logger.Debug("catalog synced",
		slog.String("path", path),
		slog.Int("indexed", st.Indexed),
		slog.Int("removed", st.Removed),
		slog.Int("skipped", st.Skipped))
	return db, nil
}

// Run watches the repository until ctx is cancelled or a signal arrives,
// keeping the catalog and index.json in step with the entry files.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.repo == nil {
		return fmt.Errorf("repo is required")
	}

	cfg := app.config
	r := app.repo

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}

	logger.Info("Configuration loaded",
		slog.String("root", r.Root()),
		slog.String("catalog_path", cfg.Catalog.Resolve(r)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := OpenCatalog(cfg, r, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := index.Write(r, time.Now()); err != nil {
		logger.Warn("initial index write failed", slog.String("error", err.Error()))
	}

	changed := make(chan struct{}, 1)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return catalog.Watch(gCtx, db, r, logger, func(kind, path string) {
			logger.Info("entry changed", slog.String("kind", kind), slog.String("path", path))
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	})

	g.Go(func() error {
		return rebuildIndex(gCtx, r, logger, changed)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			return errShutdown
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped")
	return nil
}

var errShutdown = errors.New("shutdown requested")

// rebuildIndex regenerates index.json once changes have been quiet for
// indexDebounce.
func rebuildIndex(ctx context.Context, r *repo.Repo, logger *slog.Logger, changed <-chan struct{}) error {
	timer := time.NewTimer(indexDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-changed:
			timer.Reset(indexDebounce)
		case <-timer.C:
			idx, err := index.Write(r, time.Now())
			if err != nil {
				logger.Warn("index write failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("index written", slog.Int("entries", idx.EntryCount))
		}
	}
}
