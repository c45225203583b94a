// Package apperr defines the domain error kinds shared by every lkr package.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind uint8

// Error kinds.
const (
	KindRepoNotFound Kind = iota + 1
	KindEntryNotFound
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindRepoNotFound:
		return "repository not found"
	case KindEntryNotFound:
		return "entry not found"
	case KindParse:
		return "parse error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrRepoNotFound  = &Error{Kind: KindRepoNotFound}
	ErrEntryNotFound = &Error{Kind: KindEntryNotFound}
	ErrParse         = &Error{Kind: KindParse}
)

// Error is the single domain error type. Path names the file (or id) the
// error is about and may be empty.
type Error struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// RepoNotFound reports that no repository marker exists above start.
func RepoNotFound(start string) *Error {
	return &Error{
		Kind: KindRepoNotFound,
		Msg:  fmt.Sprintf("no knowledge repository found from %s; run 'lkr init' to create one", start),
	}
}

// EntryNotFound reports an id with no backing file.
func EntryNotFound(id string) *Error {
	return &Error{Kind: KindEntryNotFound, Msg: "entry not found: " + id}
}

// Parse reports a malformed entry or value.
func Parse(path, msg string) *Error {
	return &Error{Kind: KindParse, Path: path, Msg: msg}
}

// Parsef is Parse with formatting. A wrapped %w error is kept as the cause.
func Parsef(path, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: KindParse, Path: path, Msg: err.Error(), Err: errors.Unwrap(err)}
}

// WithPath returns a copy of err attributed to path when err is a parse
// error without one; other errors are returned unchanged.
func WithPath(err error, path string) error {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindParse || e.Path != "" {
		return err
	}
	cp := *e
	cp.Path = path
	return &cp
}
