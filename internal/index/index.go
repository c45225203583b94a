// Package index derives the lookup index (.knowledge/index.json) from the
// entries of a repository. The index is always regenerable and is never read
// back as input by any other package.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/repo"
)

// Entry is the projection of one entry into the index.
type Entry struct {
	ID      string   `json:"id"`
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
	Status  *string  `json:"status"`
	Created string   `json:"created"`
	Updated *string  `json:"updated"`
}

// Index is the full derived view.
type Index struct {
	Generated  string              `json:"generated"`
	EntryCount int                 `json:"entry_count"`
	Entries    []Entry             `json:"entries"`
	TagIndex   map[string][]string `json:"tag_index"`
	TypeIndex  map[string][]string `json:"type_index"`
}

// Project converts a parsed entry into its index row. path is the entry's
// location relative to the repository root.
func Project(e models.Entry, path string) Entry {
	fm := e.FrontMatter
	tags := make([]string, len(fm.Tags))
	for i, t := range fm.Tags {
		tags[i] = t.Value()
	}
	out := Entry{
		ID:      fm.ID.Value(),
		Path:    path,
		Title:   fm.Title,
		Type:    fm.Type.String(),
		Tags:    tags,
		Created: fm.Created.Format(models.DateLayout),
	}
	if fm.Status != models.StatusNone {
		s := fm.Status.String()
		out.Status = &s
	}
	if !fm.Updated.IsZero() {
		u := fm.Updated.Format(models.DateLayout)
		out.Updated = &u
	}
	return out
}

// Build enumerates the repository's entries and folds them into an Index.
// Files that fail to parse are left out; the repo logs them.
func Build(r *repo.Repo, now time.Time) (*Index, error) {
	seq, err := r.IterEntries()
	if err != nil {
		return nil, fmt.Errorf("index: list entries: %w", err)
	}

	idx := &Index{
		Generated: now.UTC().Format(time.RFC3339),
		Entries:   []Entry{},
		TagIndex:  map[string][]string{},
		TypeIndex: map[string][]string{},
	}
	for e := range seq {
		row := Project(e, r.Rel(e.Path))
		idx.Entries = append(idx.Entries, row)
		for _, tag := range row.Tags {
			idx.TagIndex[tag] = append(idx.TagIndex[tag], row.ID)
		}
		idx.TypeIndex[row.Type] = append(idx.TypeIndex[row.Type], row.ID)
	}
	idx.EntryCount = len(idx.Entries)
	return idx, nil
}

// Write builds the index and persists it to the repository's metadata
// directory.
func Write(r *repo.Repo, now time.Time) (*Index, error) {
	idx, err := Build(r, now)
	if err != nil {
		return nil, err
	}
	if err := Save(idx, r.IndexPath()); err != nil {
		return nil, err
	}
	return idx, nil
}

// Save writes idx as indented JSON to path.
func Save(idx *Index, path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("index: mkdir: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("index: write %s: %w", path, err)
	}
	return nil
}
