// Package testutil provides shared test helpers for setting up repositories
// and catalog databases.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/repo"
)

// Doc describes an entry file to write. Empty optional fields are omitted.
type Doc struct {
	ID      string
	Title   string
	Type    string
	Tags    []string
	Created string
	Updated string
	Status  string
	Related []string
	Body    string
}

// Markdown renders d as an entry file.
func (d Doc) Markdown() string {
	title := d.Title
	if title == "" {
		title = "Entry " + d.ID
	}
	typ := d.Type
	if typ == "" {
		typ = "note"
	}
	created := d.Created
	if created == "" {
		created = "2024-01-15"
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %q\n", d.ID)
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "type: %s\n", typ)
	fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(d.Tags, ", "))
	fmt.Fprintf(&b, "created: %s\n", created)
	if d.Updated != "" {
		fmt.Fprintf(&b, "updated: %s\n", d.Updated)
	}
	if d.Status != "" {
		fmt.Fprintf(&b, "status: %s\n", d.Status)
	}
	if len(d.Related) > 0 {
		fmt.Fprintf(&b, "related: [%s]\n", strings.Join(d.Related, ", "))
	}
	b.WriteString("---\n\n")
	b.WriteString(d.Body)
	return b.String()
}

// TestRepo initializes a repository in a temporary directory.
func TestRepo(t *testing.T) *repo.Repo {
	t.Helper()
	r, err := repo.Init(t.TempDir(), "test-kb")
	if err != nil {
		t.Fatalf("repo.Init: %v", err)
	}
	return r
}

// WriteFile writes content at rel (slash-separated, relative to the repo
// root) and returns the absolute path.
func WriteFile(t *testing.T, r *repo.Repo, rel, content string) string {
	t.Helper()
	p := filepath.Join(r.Root(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// WriteDoc writes d at its canonical path and returns the absolute path.
func WriteDoc(t *testing.T, r *repo.Repo, d Doc) string {
	t.Helper()
	prefix := d.ID
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return WriteFile(t, r, "entries/"+prefix+"/"+d.ID+".md", d.Markdown())
}

// TestCatalog opens a catalog database in a temporary directory.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
