// Package parser converts entry files into typed models.Entry values and back.
// It is the only place raw front matter is read; everything downstream works
// with already-validated values.
package parser

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/models"
)

// Extension is the file extension of entry documents.
const Extension = ".md"

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// rawFrontMatter mirrors the wire format. Pointers distinguish a missing key
// from an empty value; unknown keys are ignored.
type rawFrontMatter struct {
	ID         *string           `yaml:"id"`
	Title      *string           `yaml:"title"`
	Type       *string           `yaml:"type"`
	Tags       *[]string         `yaml:"tags"`
	Created    *string           `yaml:"created"`
	Updated    *string           `yaml:"updated"`
	Status     *string           `yaml:"status"`
	Difficulty *string           `yaml:"difficulty"`
	Author     *string           `yaml:"author"`
	Related    []string          `yaml:"related"`
	Source     map[string]string `yaml:"source"`
}

// Parse reads the file at path and parses it.
func Parse(path string) (models.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Entry{}, apperr.Parsef(path, "failed to read: %w", err)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses data as the content of the file at path.
func ParseBytes(path string, data []byte) (models.Entry, error) {
	var raw rawFrontMatter
	body, err := frontmatter.MustParse(bytes.NewReader(data), &raw, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return models.Entry{}, apperr.Parse(path, "no front matter block")
		}
		return models.Entry{}, apperr.Parsef(path, "invalid front matter: %w", err)
	}

	fm, err := raw.toFrontMatter()
	if err != nil {
		return models.Entry{}, apperr.WithPath(err, path)
	}

	return models.Entry{
		FrontMatter: fm,
		Body:        strings.TrimLeft(string(body), "\r\n"),
		Path:        path,
	}, nil
}

func (r *rawFrontMatter) toFrontMatter() (models.FrontMatter, error) {
	var fm models.FrontMatter

	for _, req := range []struct {
		name    string
		present bool
	}{
		{"id", r.ID != nil},
		{"title", r.Title != nil},
		{"type", r.Type != nil},
		{"tags", r.Tags != nil},
		{"created", r.Created != nil},
	} {
		if !req.present {
			return fm, apperr.Parsef("", "missing required field %q", req.name)
		}
	}

	var err error
	if fm.ID, err = models.ParseEntryID(*r.ID); err != nil {
		return fm, err
	}
	fm.Title = *r.Title
	if strings.TrimSpace(fm.Title) == "" {
		return fm, apperr.Parse("", "title cannot be empty")
	}
	if fm.Type, err = models.ParseEntryType(*r.Type); err != nil {
		return fm, err
	}
	if fm.Tags, err = models.ParseTags(*r.Tags); err != nil {
		return fm, err
	}
	if fm.Created, err = parseDate("created", *r.Created); err != nil {
		return fm, err
	}

	if r.Updated != nil {
		if fm.Updated, err = parseDate("updated", *r.Updated); err != nil {
			return fm, err
		}
	}
	if r.Status != nil {
		if fm.Status, err = models.ParseEntryStatus(*r.Status); err != nil {
			return fm, err
		}
	}
	if r.Difficulty != nil {
		fm.Difficulty = *r.Difficulty
	}
	if r.Author != nil {
		fm.Author = *r.Author
	}
	for _, raw := range r.Related {
		id, err := models.ParseEntryID(raw)
		if err != nil {
			return fm, apperr.Parsef("", "related: invalid entry id %q", raw)
		}
		fm.Related = append(fm.Related, id)
	}
	if len(r.Source) > 0 {
		fm.Source = r.Source
	}
	return fm, nil
}

// timestampLayouts are the YAML timestamp forms accepted for date fields;
// only their date part is kept.
var timestampLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

// parseDate accepts a calendar date or a timestamp, keeping only the date
// part of the latter.
func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Date(t), nil
		}
	}
	return time.Time{}, apperr.Parsef("", "%s: invalid date %q", field, s)
}
