package models

import (
	"fmt"

	"github.com/starford/lkr/internal/apperr"
)

// EntryType selects the body template of an entry.
type EntryType uint8

// Entry types.
const (
	TypeQAndA EntryType = iota + 1
	TypeGuide
	TypePattern
	TypeNote
)

var entryTypeNames = map[EntryType]string{
	TypeQAndA:   "q-and-a",
	TypeGuide:   "guide",
	TypePattern: "pattern",
	TypeNote:    "note",
}

// EntryTypes lists every type in declaration order.
func EntryTypes() []EntryType {
	return []EntryType{TypeQAndA, TypeGuide, TypePattern, TypeNote}
}

// ParseEntryType maps the wire name to an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	for _, t := range EntryTypes() {
		if entryTypeNames[t] == s {
			return t, nil
		}
	}
	return 0, apperr.Parsef("", "invalid entry type %q", s)
}

func (t EntryType) String() string {
	if s, ok := entryTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EntryType(%d)", uint8(t))
}

// EntryStatus is the review state of an entry. StatusNone means the field is
// absent.
type EntryStatus uint8

// Entry statuses.
const (
	StatusNone EntryStatus = iota
	StatusDraft
	StatusReviewed
	StatusOutdated
)

// ParseEntryStatus maps the wire name to an EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch s {
	case "draft":
		return StatusDraft, nil
	case "reviewed":
		return StatusReviewed, nil
	case "outdated":
		return StatusOutdated, nil
	}
	return StatusNone, apperr.Parsef("", "invalid status %q", s)
}

func (s EntryStatus) String() string {
	switch s {
	case StatusNone:
		return ""
	case StatusDraft:
		return "draft"
	case StatusReviewed:
		return "reviewed"
	case StatusOutdated:
		return "outdated"
	}
	return fmt.Sprintf("EntryStatus(%d)", uint8(s))
}
