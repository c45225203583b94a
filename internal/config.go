package internal

import (
	"errors"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lkr/internal/repo"
	"github.com/starford/lkr/internal/search"
)

// CatalogFileName is the default catalog database inside the metadata
// directory.
const CatalogFileName = "catalog.db"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Search  SearchConfig      `yaml:"search"`
	Catalog CatalogConfig     `yaml:"catalog"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Catalog.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SearchConfig selects and tunes the search backend.
type SearchConfig struct {
	Tool            string `yaml:"tool"`
	MaxMatches      int    `yaml:"max_matches"`
	DisableExternal bool   `yaml:"disable_external"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Tool, validation.When(!c.DisableExternal, validation.Required, validation.By(ripgrepTool))),
		validation.Field(&c.MaxMatches, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

func ripgrepTool(value any) error {
	if tool, _ := value.(string); tool != "" && !search.IsRipgrep(tool) {
		return errors.New("must name an rg binary")
	}
	return nil
}

// Backend returns the in-process scanner when external tools are disabled
// and otherwise probes for Tool.
func (c *SearchConfig) Backend() search.Backend {
	if c.DisableExternal {
		return search.Scanner{}
	}
	return search.Select(c.Tool)
}

// NewSearcher builds a Searcher from the configuration.
func (c *SearchConfig) NewSearcher(logger *slog.Logger) *search.Searcher {
	return search.New(
		search.WithBackend(c.Backend()),
		search.WithMaxMatches(c.MaxMatches),
		search.WithLogger(logger),
	)
}

// CatalogConfig locates the catalog database. An empty Path means
// CatalogFileName inside the repository's metadata directory.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Path != "", validation.Length(1, 4096))),
	)
}

// Resolve returns the database path for r.
func (c *CatalogConfig) Resolve(r *repo.Repo) string {
	if c.Path == "" {
		return filepath.Join(r.MetaDir(), CatalogFileName)
	}
	if filepath.IsAbs(c.Path) {
		return c.Path
	}
	return filepath.Join(r.Root(), c.Path)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Search: SearchConfig{
			Tool:       search.DefaultTool,
			MaxMatches: search.DefaultMaxMatches,
		},
	}
}
