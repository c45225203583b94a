// Package search answers free-text queries over entry files, delegating the
// scan to ripgrep when it is installed and scanning in process otherwise.
// Both paths produce identical results.
package search

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/parser"
)

// DefaultMaxMatches is the number of matching lines kept per result.
const DefaultMaxMatches = 3

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("search: empty query")

// Result is one matching entry file.
type Result struct {
	EntryID string   `json:"entry_id"`
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	Matches []string `json:"matches"`
}

// Filter restricts results to entries carrying Tag and/or of Type. Empty
// fields do not filter.
type Filter struct {
	Tag  string
	Type string
}

// Searcher runs queries through one Backend.
type Searcher struct {
	backend    Backend
	maxMatches int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBackend overrides backend selection.
func WithBackend(b Backend) Option {
	return func(s *Searcher) { s.backend = b }
}

// WithMaxMatches sets how many matching lines each result keeps.
func WithMaxMatches(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxMatches = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// New returns a Searcher. Without WithBackend the backend is chosen by
// Select(DefaultTool).
func New(opts ...Option) *Searcher {
	s := &Searcher{
		maxMatches: DefaultMaxMatches,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = Select(DefaultTool)
	}
	return s
}

// Backend returns the backend in use.
func (s *Searcher) Backend() Backend { return s.backend }

// Search returns the entry files under dir containing query, ordered by path.
func (s *Searcher) Search(ctx context.Context, query, dir string, f Filter) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	m, err := newMatcher(f)
	if err != nil {
		return nil, err
	}

	paths, err := s.backend.Candidates(ctx, query, dir)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search: candidates",
		slog.String("backend", s.backend.Name()),
		slog.Int("count", len(paths)))

	needle := strings.ToLower(query)
	out := []Result{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			s.logger.Warn("search: read failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		lines := matchingLines(string(data), needle, s.maxMatches)
		if len(lines) == 0 {
			continue
		}
		entry, parseErr := parser.ParseBytes(p, data)
		if !m.match(entry, parseErr) {
			continue
		}
		out = append(out, newResult(p, dir, entry, parseErr, lines))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func newResult(p, dir string, e models.Entry, parseErr error, lines []string) Result {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		rel = p
	}
	r := Result{Path: filepath.ToSlash(rel), Matches: lines}
	if parseErr == nil {
		r.EntryID = e.FrontMatter.ID.Value()
		r.Title = e.FrontMatter.Title
	} else {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		r.EntryID, r.Title = stem, stem
	}
	return r
}

// matchingLines returns up to max lines of content containing needle.
func matchingLines(content, needle string, max int) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.Contains(strings.ToLower(line), needle) {
			out = append(out, line)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

type matcher struct {
	tag    *models.Tag
	typ    models.EntryType
	active bool
}

func newMatcher(f Filter) (matcher, error) {
	var m matcher
	if strings.TrimSpace(f.Tag) != "" {
		t, err := models.ParseTag(f.Tag)
		if err != nil {
			return m, err
		}
		m.tag = &t
		m.active = true
	}
	if f.Type != "" {
		typ, err := models.ParseEntryType(f.Type)
		if err != nil {
			return m, fmt.Errorf("search: type filter: %w", err)
		}
		m.typ = typ
		m.active = true
	}
	return m, nil
}

// match applies the filter. Filtering needs front matter, so files that do
// not parse are only eligible when no filter is set.
func (m matcher) match(e models.Entry, parseErr error) bool {
	if !m.active {
		return true
	}
	if parseErr != nil {
		return false
	}
	if m.tag != nil && !e.HasTag(*m.tag) {
		return false
	}
	if m.typ != 0 && e.FrontMatter.Type != m.typ {
		return false
	}
	return true
}
