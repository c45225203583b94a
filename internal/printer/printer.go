// Package printer renders results for the terminal. Nothing in the core
// packages formats output; commands hand their typed results to a Printer.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/outline"
	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/validate"
)

// Printer writes to an injected pair of writers.
type Printer struct {
	out, err io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	faint  *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor forces color on or off. By default fatih/color decides from the
// terminal and NO_COLOR.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		for _, c := range p.colors() {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// New returns a Printer writing results to out and diagnostics to errOut.
func New(out, errOut io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:    out,
		err:    errOut,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan),
		faint:  color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) colors() []*color.Color {
	return []*color.Color{p.green, p.yellow, p.red, p.cyan, p.faint}
}

// Success prints a green message with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	p.green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow message to the diagnostic writer.
func (p *Printer) Warning(format string, a ...any) {
	p.yellow.Fprintf(p.err, "⚠ %s\n", fmt.Sprintf(format, a...))
}

// Error prints a red error line to the diagnostic writer.
func (p *Printer) Error(err error) {
	p.red.Fprintf(p.err, "error: %v\n", err)
}

// Println prints a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Raw writes data unchanged.
func (p *Printer) Raw(data []byte) error {
	_, err := p.out.Write(data)
	return err
}

// EntrySummary prints the metadata and body of one entry.
func (p *Printer) EntrySummary(e models.Entry) {
	fm := e.FrontMatter
	p.cyan.Fprintf(p.out, "%s", fm.ID)
	fmt.Fprintf(p.out, "  %s\n", fm.Title)

	p.field("type", fm.Type.String())
	p.field("tags", joinTags(fm.Tags))
	p.field("created", fm.Created.Format(models.DateLayout))
	if !fm.Updated.IsZero() {
		p.field("updated", fm.Updated.Format(models.DateLayout))
	}
	if fm.Status != models.StatusNone {
		p.field("status", fm.Status.String())
	}
	if fm.Difficulty != "" {
		p.field("difficulty", fm.Difficulty)
	}
	if fm.Author != "" {
		p.field("author", fm.Author)
	}
	if len(fm.Related) > 0 {
		ids := make([]string, len(fm.Related))
		for i, id := range fm.Related {
			ids[i] = id.Value()
		}
		p.field("related", strings.Join(ids, ", "))
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(p.out, "\n%s\n", body)
	}
}

func (p *Printer) field(name, value string) {
	p.faint.Fprintf(p.out, "  %-10s", name)
	fmt.Fprintf(p.out, " %s\n", value)
}

// ValidationReport prints every issue followed by a summary line.
func (p *Printer) ValidationReport(r *validate.Report) {
	for _, is := range r.Issues {
		c := p.yellow
		if is.Level == validate.LevelError {
			c = p.red
		}
		c.Fprintf(p.out, "%-7s", is.Level)
		fmt.Fprintf(p.out, " %s [%s] %s\n", is.File, is.Rule, is.Message)
	}
	if r.IsClean() {
		p.Success("%d entries checked, %d errors, %d warnings", r.EntriesChecked, r.Errors, r.Warnings)
		return
	}
	p.red.Fprintf(p.out, "✗ %d entries checked, %d errors, %d warnings\n", r.EntriesChecked, r.Errors, r.Warnings)
}

// SearchResults prints each result with its matching lines.
func (p *Printer) SearchResults(results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(p.out, "no matches")
		return
	}
	for _, r := range results {
		p.cyan.Fprintf(p.out, "%s", r.EntryID)
		fmt.Fprintf(p.out, "  %s  ", r.Title)
		p.faint.Fprintf(p.out, "%s\n", r.Path)
		for _, m := range r.Matches {
			fmt.Fprintf(p.out, "    %s\n", strings.TrimSpace(m))
		}
	}
}

// EntryList prints one line per index row.
func (p *Printer) EntryList(entries []index.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "no entries")
		return
	}
	for _, e := range entries {
		p.cyan.Fprintf(p.out, "%s", e.ID)
		fmt.Fprintf(p.out, "  %-8s %s", e.Type, e.Title)
		if len(e.Tags) > 0 {
			p.faint.Fprintf(p.out, "  [%s]", strings.Join(e.Tags, ", "))
		}
		fmt.Fprintln(p.out)
	}
}

// Outline prints headings indented by level, then the link targets.
func (p *Printer) Outline(o outline.Outline) {
	for _, h := range o.Headings {
		indent := strings.Repeat("  ", max(h.Level-1, 0))
		fmt.Fprintf(p.out, "%s%s\n", indent, h.Text)
	}
	if len(o.Links) == 0 {
		return
	}
	p.faint.Fprintln(p.out, "links:")
	for _, l := range o.Links {
		fmt.Fprintf(p.out, "  %s ", l.Text)
		p.cyan.Fprintf(p.out, "<%s>\n", l.Destination)
	}
}

func joinTags(tags []models.Tag) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Value()
	}
	return strings.Join(out, ", ")
}
