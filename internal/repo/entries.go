package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/parser"
)

// NewEntry builds a draft entry with a fresh id and the body template for typ.
// Nothing is written to disk.
func NewEntry(typ models.EntryType, title string, rawTags []string, author string, now time.Time) (models.Entry, error) {
	if strings.TrimSpace(title) == "" {
		return models.Entry{}, apperr.Parse("", "title cannot be empty")
	}
	tags, err := models.ParseTags(rawTags)
	if err != nil {
		return models.Entry{}, err
	}
	id, err := models.NewEntryID()
	if err != nil {
		return models.Entry{}, err
	}
	return models.Entry{
		FrontMatter: models.FrontMatter{
			ID:      id,
			Title:   title,
			Type:    typ,
			Tags:    tags,
			Created: models.Date(now),
			Status:  models.StatusDraft,
			Author:  author,
		},
		Body: Template(typ),
	}, nil
}

// SaveEntry writes entry to its canonical path and returns that path.
func (r *Repo) SaveEntry(entry models.Entry) (string, error) {
	p := r.EntryPath(entry.FrontMatter.ID)
	if err := parser.Write(entry, p); err != nil {
		return "", err
	}
	return p, nil
}

// ReadRaw returns the file bytes of the entry rawID resolves to.
func (r *Repo) ReadRaw(rawID string) ([]byte, error) {
	e, err := r.ResolveEntry(rawID)
	if err != nil {
		return nil, err
	}
	return r.store.Read(r.Rel(e.Path))
}

// RemoveEntry deletes the canonical file of rawID.
func (r *Repo) RemoveEntry(rawID string) error {
	id, err := models.ParseEntryID(rawID)
	if err != nil {
		return apperr.EntryNotFound(rawID)
	}
	rel := RelEntryPath(id)
	ok, err := r.store.Exists(rel)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.EntryNotFound(rawID)
	}
	return r.store.Delete(rel)
}

// Relocate moves a parsed entry to its canonical path. It reports whether a
// move happened and refuses to overwrite an existing file.
func (r *Repo) Relocate(entry models.Entry) (string, bool, error) {
	want := RelEntryPath(entry.FrontMatter.ID)
	have := r.Rel(entry.Path)
	if have == want {
		return entry.Path, false, nil
	}
	ok, err := r.store.Exists(want)
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", false, fmt.Errorf("repo: relocate %s: %s already exists", have, want)
	}
	if err := r.store.Move(have, want); err != nil {
		return "", false, err
	}
	return r.EntryPath(entry.FrontMatter.ID), true, nil
}
