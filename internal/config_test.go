package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/testutil"
	"github.com/starford/lkr/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Search.Tool != "rg" || cfg.Search.MaxMatches != 3 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
}

func TestSearchConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SearchConfig
		wantErr bool
	}{
		{"defaults", SearchConfig{Tool: "rg", MaxMatches: 3}, false},
		{"zero matches", SearchConfig{Tool: "rg", MaxMatches: 0}, true},
		{"too many matches", SearchConfig{Tool: "rg", MaxMatches: 1000}, true},
		{"missing tool", SearchConfig{MaxMatches: 3}, true},
		{"missing tool but disabled", SearchConfig{MaxMatches: 3, DisableExternal: true}, false},
		{"rg by path", SearchConfig{Tool: "/usr/local/bin/rg", MaxMatches: 3}, false},
		{"not ripgrep", SearchConfig{Tool: "grep", MaxMatches: 3}, true},
		{"not ripgrep but disabled", SearchConfig{Tool: "grep", MaxMatches: 3, DisableExternal: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchConfig_Backend(t *testing.T) {
	cfg := SearchConfig{Tool: "rg", MaxMatches: 3, DisableExternal: true}
	if _, ok := cfg.Backend().(search.Scanner); !ok {
		t.Errorf("disabled external: backend = %T, want search.Scanner", cfg.Backend())
	}
	cfg = SearchConfig{Tool: "grep", MaxMatches: 3}
	if name := cfg.Backend().Name(); name != "scan" {
		t.Errorf("non-rg tool: backend = %s, want scan", name)
	}
	cfg = SearchConfig{Tool: "/lkr/missing/rg", MaxMatches: 3}
	if name := cfg.Backend().Name(); name != "scan" {
		t.Errorf("missing tool: backend = %s, want scan", name)
	}
}

func TestCatalogConfig_Resolve(t *testing.T) {
	r := testutil.TestRepo(t)

	tests := []struct {
		path string
		want string
	}{
		{"", filepath.Join(r.MetaDir(), "catalog.db")},
		{"data/c.db", filepath.Join(r.Root(), "data", "c.db")},
		{"/tmp/c.db", "/tmp/c.db"},
	}
	for _, tt := range tests {
		c := CatalogConfig{Path: tt.path}
		if got := c.Resolve(r); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("LKR_TEST_TOOL", "/opt/bin/rg")
	p := filepath.Join(t.TempDir(), "lkr.yaml")
	content := "app:\n  log_level: debug\nsearch:\n  tool: ${LKR_TEST_TOOL}\n  max_matches: 5\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := config.LoadOptional(p, cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.App.LogLevel)
	}
	if cfg.Search.Tool != "/opt/bin/rg" || cfg.Search.MaxMatches != 5 {
		t.Errorf("search = %+v", cfg.Search)
	}
}

func TestOpenCatalog_Syncs(t *testing.T) {
	r := testutil.TestRepo(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001"})

	db, err := OpenCatalog(NewDefaultConfig(), r, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer db.Close()

	if n, _ := db.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(r.MetaDir(), "catalog.db")); err != nil {
		t.Errorf("catalog file: %v", err)
	}
}
