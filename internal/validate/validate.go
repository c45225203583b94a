// Package validate checks a repository for structural defects. It reports
// every problem it finds and never modifies entries.
package validate

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/repo"
)

// Level is the severity of an issue.
type Level string

// Severities.
const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Rule names the check that produced an issue.
type Rule string

// Rules, in evaluation order.
const (
	RuleSchema     Rule = "schema"
	RuleUnique     Rule = "unique"
	RuleReference  Rule = "reference"
	RuleFilename   Rule = "filename"
	RuleDirectory  Rule = "directory"
	RuleStaleDraft Rule = "stale-draft"
	RuleStale      Rule = "stale"
)

// Age limits for the warning rules.
const (
	DraftMaxAgeDays      = 30
	UnreviewedMaxAgeDays = 180
)

// Issue is one finding.
type Issue struct {
	Level   Level  `json:"level"`
	Rule    Rule   `json:"rule"`
	File    string `json:"file"`
	Message string `json:"message"`
}

// Report aggregates the issues of one validation run.
type Report struct {
	Issues         []Issue `json:"issues"`
	EntriesChecked int     `json:"entries_checked"`
	Errors         int     `json:"errors"`
	Warnings       int     `json:"warnings"`
}

// IsClean reports whether no errors were found. Warnings do not count.
func (r *Report) IsClean() bool { return r.Errors == 0 }

func (r *Report) addError(rule Rule, file, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{LevelError, rule, file, fmt.Sprintf(format, args...)})
	r.Errors++
}

func (r *Report) addWarning(rule Rule, file, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{LevelWarning, rule, file, fmt.Sprintf(format, args...)})
	r.Warnings++
}

type options struct {
	now         time.Time
	parallelism int
}

// Option configures Validate.
type Option func(*options)

// WithNow fixes the reference time for the age rules.
func WithNow(t time.Time) Option {
	return func(o *options) { o.now = t }
}

// WithParallelism bounds how many files are parsed at once.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

type parsed struct {
	rel   string
	entry models.Entry
	err   error
}

// Validate evaluates every file under the entries directory. Unlike
// repo.IterEntries it does not skip files that fail to parse; each failure
// becomes a schema error. The returned error is non-nil only when the file
// list itself cannot be read.
func Validate(ctx context.Context, r *repo.Repo, opts ...Option) (*Report, error) {
	o := options{now: time.Now(), parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := r.EntryFiles()
	if err != nil {
		return nil, err
	}

	results := make([]parsed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := r.ParseFile(f)
			results[i] = parsed{rel: r.Rel(f), entry: e, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Issues: []Issue{}, EntriesChecked: len(files)}
	var ok []parsed

	for _, p := range results {
		if p.err != nil {
			report.addError(RuleSchema, p.rel, "%s", parseMessage(p.err))
			continue
		}
		ok = append(ok, p)

		id := p.entry.FrontMatter.ID
		base := strings.TrimSuffix(filepath.Base(p.entry.Path), filepath.Ext(p.entry.Path))
		if base != id.Value() {
			report.addError(RuleFilename, p.rel, "filename %q does not match id %q", filepath.Base(p.entry.Path), id.Value())
		}
		dir := filepath.Base(filepath.Dir(p.entry.Path))
		if dir != id.Prefix() {
			report.addError(RuleDirectory, p.rel, "directory %q does not match id prefix %q", dir, id.Prefix())
		}
	}

	byID := make(map[string][]string, len(ok))
	for _, p := range ok {
		id := p.entry.FrontMatter.ID.Value()
		byID[id] = append(byID[id], p.rel)
	}
	for _, p := range ok {
		id := p.entry.FrontMatter.ID.Value()
		if files := byID[id]; len(files) > 1 {
			report.addError(RuleUnique, p.rel, "duplicate id %q (also in %s)", id, strings.Join(others(files, p.rel), ", "))
		}
	}

	for _, p := range ok {
		for _, ref := range p.entry.FrontMatter.Related {
			if _, found := byID[ref.Value()]; !found {
				report.addError(RuleReference, p.rel, "related id %q not found", ref.Value())
			}
		}
	}

	today := models.Date(o.now)
	for _, p := range ok {
		fm := p.entry.FrontMatter
		age := int(today.Sub(models.Date(fm.Created)).Hours() / 24)
		if fm.Status == models.StatusDraft && age > DraftMaxAgeDays {
			report.addWarning(RuleStaleDraft, p.rel, "draft entry is %d days old", age)
		}
		if fm.Updated.IsZero() && age > UnreviewedMaxAgeDays {
			report.addWarning(RuleStale, p.rel, "entry has no 'updated' date and is %d days old", age)
		}
	}

	return report, nil
}

func others(files []string, self string) []string {
	out := make([]string, 0, len(files)-1)
	for _, f := range files {
		if f != self {
			out = append(out, f)
		}
	}
	return out
}
