// Package models defines the domain types for lkr. Values of these types are
// produced by the parser and are valid by construction.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the wire format of created/updated dates.
const DateLayout = time.DateOnly

// FrontMatter is the typed metadata block of an entry.
type FrontMatter struct {
	ID      EntryID
	Title   string
	Type    EntryType
	Tags    []Tag
	Created time.Time

	// Optional fields; zero values mean absent.
	Updated    time.Time
	Status     EntryStatus
	Difficulty string
	Author     string
	Related    []EntryID
	Source     map[string]string
}

// Entry is a parsed document.
type Entry struct {
	FrontMatter FrontMatter
	Body        string
	Path        string
}

// HasTag reports whether the entry carries t.
func (e *Entry) HasTag(t Tag) bool {
	for _, have := range e.FrontMatter.Tags {
		if have == t {
			return true
		}
	}
	return false
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Schema versions understood by this build.
const (
	SchemaVersion = "0.1.0"
)

// RepoConfig is the repository's .knowledge/config.yaml.
type RepoConfig struct {
	Version     string `yaml:"version"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Validate validates the repository configuration.
func (c *RepoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Version, validation.Required, validation.In(SchemaVersion)),
	)
}

// NewRepoConfig returns the default configuration written by init.
func NewRepoConfig(name string) *RepoConfig {
	return &RepoConfig{Version: SchemaVersion, Name: name}
}
