package printer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/outline"
	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/validate"
)

func newTest() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut, WithColor(false)), &out, &errOut
}

func TestSuccessWarningError(t *testing.T) {
	p, out, errOut := newTest()

	p.Success("created %s", "aa000001")
	p.Warning("skipped %d", 2)
	p.Error(errors.New("boom"))

	require.Equal(t, "✓ created aa000001\n", out.String())
	require.Equal(t, "⚠ skipped 2\nerror: boom\n", errOut.String())
}

func TestValidationReport(t *testing.T) {
	t.Run("clean report", func(t *testing.T) {
		p, out, _ := newTest()
		p.ValidationReport(&validate.Report{EntriesChecked: 3})
		require.Equal(t, "✓ 3 entries checked, 0 errors, 0 warnings\n", out.String())
	})

	t.Run("report with issues", func(t *testing.T) {
		p, out, _ := newTest()
		p.ValidationReport(&validate.Report{
			EntriesChecked: 2,
			Errors:         1,
			Warnings:       1,
			Issues: []validate.Issue{
				{Level: validate.LevelError, Rule: validate.RuleUnique, File: "entries/aa/aa000001.md", Message: "duplicate id"},
				{Level: validate.LevelWarning, Rule: validate.RuleStaleDraft, File: "entries/bb/bb000002.md", Message: "old draft"},
			},
		})
		got := out.String()
		require.Contains(t, got, "error   entries/aa/aa000001.md [unique] duplicate id\n")
		require.Contains(t, got, "warning entries/bb/bb000002.md [stale-draft] old draft\n")
		require.Contains(t, got, "✗ 2 entries checked, 1 errors, 1 warnings\n")
	})
}

func TestSearchResults(t *testing.T) {
	p, out, _ := newTest()
	p.SearchResults(nil)
	require.Equal(t, "no matches\n", out.String())

	out.Reset()
	p.SearchResults([]search.Result{{
		EntryID: "aa000001",
		Title:   "Imports",
		Path:    "aa/aa000001.md",
		Matches: []string{"  relative imports  "},
	}})
	require.Equal(t, "aa000001  Imports  aa/aa000001.md\n    relative imports\n", out.String())
}

func TestEntryList(t *testing.T) {
	p, out, _ := newTest()
	p.EntryList([]index.Entry{{ID: "aa000001", Type: "note", Title: "A", Tags: []string{"go", "db"}}})
	require.Equal(t, "aa000001  note     A  [go, db]\n", out.String())
}

func TestEntrySummary(t *testing.T) {
	id, err := models.ParseEntryID("aa000001")
	require.NoError(t, err)
	tags, err := models.ParseTags([]string{"go"})
	require.NoError(t, err)

	p, out, _ := newTest()
	p.EntrySummary(models.Entry{
		FrontMatter: models.FrontMatter{
			ID:      id,
			Title:   "Hello",
			Type:    models.TypeNote,
			Tags:    tags,
			Created: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:  models.StatusDraft,
		},
		Body: "\nBody text\n",
	})
	got := out.String()
	require.Contains(t, got, "aa000001  Hello\n")
	require.Contains(t, got, "  type       note\n")
	require.Contains(t, got, "  created    2024-01-15\n")
	require.Contains(t, got, "  status     draft\n")
	require.Contains(t, got, "\nBody text\n")
	require.NotContains(t, got, "updated")
}

func TestOutline(t *testing.T) {
	p, out, _ := newTest()
	p.Outline(outline.Outline{
		Headings: []outline.Heading{{Level: 2, Text: "Steps"}, {Level: 3, Text: "Step 1"}},
		Links:    []outline.Link{{Text: "docs", Destination: "https://go.dev"}},
	})
	require.Equal(t, "  Steps\n    Step 1\nlinks:\n  docs <https://go.dev>\n", out.String())
}
