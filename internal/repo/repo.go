// Package repo locates a knowledge repository on disk and maps entry ids to
// their canonical storage paths.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/parser"
	"github.com/starford/lkr/internal/storage"
	pkgconfig "github.com/starford/lkr/pkg/config"
)

// Layout names, relative to the repository root.
const (
	EntriesDirName = "entries"
	MetaDirName    = ".knowledge"
	ConfigFileName = "config.yaml"
	IndexFileName  = "index.json"
)

// Repo is a handle on a repository root. It never caches entries; every call
// reads the file system again.
type Repo struct {
	root   string
	store  *storage.FS
	logger *slog.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the logger used to report skipped entry files.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) {
		r.logger = l
	}
}

// Open returns a handle on root without checking for the config marker.
func Open(root string, opts ...Option) (*Repo, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, err
	}
	r := &Repo{
		root:   store.Root(),
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Discover walks up from start until a directory containing
// .knowledge/config.yaml is found.
func Discover(start string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("repo: resolve start: %w", err)
	}
	current := abs
	for {
		info, err := os.Stat(filepath.Join(current, MetaDirName, ConfigFileName))
		if err == nil && info.Mode().IsRegular() {
			return Open(current, opts...)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("repo: stat marker: %w", err)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, apperr.RepoNotFound(abs)
		}
		current = parent
	}
}

// Root returns the absolute repository root.
func (r *Repo) Root() string { return r.root }

// EntriesDir returns the absolute entries directory.
func (r *Repo) EntriesDir() string { return filepath.Join(r.root, EntriesDirName) }

// MetaDir returns the absolute metadata directory.
func (r *Repo) MetaDir() string { return filepath.Join(r.root, MetaDirName) }

// ConfigPath returns the absolute path of the repository config file.
func (r *Repo) ConfigPath() string { return filepath.Join(r.MetaDir(), ConfigFileName) }

// IndexPath returns the absolute path of the derived index file.
func (r *Repo) IndexPath() string { return filepath.Join(r.MetaDir(), IndexFileName) }

// Store exposes the root-scoped storage provider.
func (r *Repo) Store() storage.Provider { return r.store }

// Logger returns the logger the repo reports through.
func (r *Repo) Logger() *slog.Logger { return r.logger }

// LoadConfig reads and validates .knowledge/config.yaml.
func (r *Repo) LoadConfig() (*models.RepoConfig, error) {
	cfg := &models.RepoConfig{}
	if err := pkgconfig.Load(r.ConfigPath(), cfg); err != nil {
		return nil, fmt.Errorf("repo: load config: %w", err)
	}
	return cfg, nil
}

// SaveConfig validates cfg and writes it to .knowledge/config.yaml.
func (r *Repo) SaveConfig(cfg *models.RepoConfig) error {
	if err := pkgconfig.Save(r.ConfigPath(), cfg); err != nil {
		return fmt.Errorf("repo: write config: %w", err)
	}
	return nil
}

// RelEntryPath returns entries/{prefix}/{id}.md, slash-separated. This is
// the only place that decides where an entry lives.
func RelEntryPath(id models.EntryID) string {
	return path.Join(EntriesDirName, id.Prefix(), id.Value()+parser.Extension)
}

// EntryPath returns the absolute canonical path for id.
func (r *Repo) EntryPath(id models.EntryID) string {
	return filepath.Join(r.root, filepath.FromSlash(RelEntryPath(id)))
}

// Rel returns p relative to the repository root, slash-separated. Paths
// outside the root are returned unchanged.
func (r *Repo) Rel(p string) string {
	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// EntryFiles returns the absolute path of every document under the entries
// directory, sorted, without parsing any of them.
func (r *Repo) EntryFiles() ([]string, error) {
	metas, err := r.store.List(EntriesDirName, parser.Extension)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = filepath.Join(r.root, filepath.FromSlash(m.Path))
	}
	return out, nil
}

// ParseFile parses the entry file at the absolute path p.
func (r *Repo) ParseFile(p string) (models.Entry, error) {
	data, err := r.store.Read(r.Rel(p))
	if err != nil {
		return models.Entry{}, err
	}
	return parser.ParseBytes(p, data)
}

// IterEntries lists the entry files and returns a sequence that parses them
// one at a time. Files that fail to parse are logged and skipped.
func (r *Repo) IterEntries() (iter.Seq[models.Entry], error) {
	files, err := r.EntryFiles()
	if err != nil {
		return nil, err
	}
	return func(yield func(models.Entry) bool) {
		for _, f := range files {
			e, err := r.ParseFile(f)
			if err != nil {
				r.logger.Warn("repo: skipping entry",
					slog.String("path", r.Rel(f)),
					slog.String("error", err.Error()))
				continue
			}
			if !yield(e) {
				return
			}
		}
	}, nil
}

// ResolveEntry parses rawID, locates its file and parses it.
func (r *Repo) ResolveEntry(rawID string) (models.Entry, error) {
	id, err := models.ParseEntryID(rawID)
	if err != nil {
		nf := apperr.EntryNotFound(rawID)
		nf.Err = err
		return models.Entry{}, nf
	}
	p := r.EntryPath(id)
	ok, err := r.store.Exists(RelEntryPath(id))
	if err != nil {
		return models.Entry{}, err
	}
	if !ok {
		return models.Entry{}, apperr.EntryNotFound(rawID)
	}
	return parser.Parse(p)
}
