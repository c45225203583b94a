package models

import (
	"strings"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/base36"
)

// EntryID is a validated entry identifier. The zero value is not a valid id;
// obtain one through ParseEntryID or NewEntryID.
type EntryID struct {
	value string
}

// ParseEntryID validates raw as an identifier: 1-8 characters of [0-9a-z].
func ParseEntryID(raw string) (EntryID, error) {
	if !base36.IsValidFormat(raw) {
		return EntryID{}, apperr.Parsef("", "invalid entry id %q: must be 1-8 lowercase alphanumeric characters", raw)
	}
	return EntryID{value: raw}, nil
}

// NewEntryID generates a fresh random identifier.
func NewEntryID() (EntryID, error) {
	raw, err := base36.Generate()
	if err != nil {
		return EntryID{}, err
	}
	return EntryID{value: raw}, nil
}

// Value returns the identifier string.
func (id EntryID) Value() string { return id.value }

// Prefix returns the shard directory name: the first two characters.
func (id EntryID) Prefix() string {
	if len(id.value) < 2 {
		return id.value
	}
	return id.value[:2]
}

// IsZero reports whether id was never constructed.
func (id EntryID) IsZero() bool { return id.value == "" }

func (id EntryID) String() string { return id.value }

// Tag is a normalized topic label: trimmed, lowercase, non-empty.
type Tag struct {
	value string
}

// ParseTag normalizes raw and rejects empty results.
func ParseTag(raw string) (Tag, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Tag{}, apperr.Parse("", "tag cannot be empty")
	}
	return Tag{value: v}, nil
}

// ParseTags parses every element of raw, dropping duplicates while keeping
// first-seen order.
func ParseTags(raw []string) ([]Tag, error) {
	out := make([]Tag, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		t, err := ParseTag(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.value]; dup {
			continue
		}
		seen[t.value] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Value returns the normalized tag.
func (t Tag) Value() string { return t.value }

func (t Tag) String() string { return t.value }
