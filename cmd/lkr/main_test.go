package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/starford/lkr/internal/apperr"
	"github.com/starford/lkr/internal/index"
)

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	argv := append([]string{"lkr", "--no-color", "-C", dir}, args...)
	err := app.Run(context.Background(), argv)
	return stdout.String(), stderr.String(), err
}

var createdRe = regexp.MustCompile(`created ([0-9a-z]{8}) at (entries/[0-9a-z]{2}/[0-9a-z]{8}\.md)`)

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := run(t, dir, "init", "kb"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".knowledge", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out, _, err := run(t, dir, "new", "-t", "Go", "-t", "cli", "note", "Hello World")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m := createdRe.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("new output = %q", out)
	}
	id := m[1]

	out, _, err = run(t, dir, "get", strings.ToUpper(id))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Hello World") || !strings.Contains(out, "go, cli") {
		t.Errorf("get output = %q", out)
	}

	out, _, err = run(t, dir, "cat", id)
	if err != nil || !strings.HasPrefix(out, "---\n") {
		t.Errorf("cat = %q, %v", out, err)
	}

	out, _, err = run(t, dir, "search", "--json", "HELLO")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, `"entry_id": "`+id+`"`) {
		t.Errorf("search output = %q", out)
	}

	out, _, err = run(t, dir, "validate")
	if err != nil {
		t.Fatalf("validate: %v (%s)", err, out)
	}
	if !strings.Contains(out, "1 entries checked, 0 errors") {
		t.Errorf("validate output = %q", out)
	}

	if _, _, err := run(t, dir, "index"); err != nil {
		t.Fatalf("index: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".knowledge", "index.json"))
	if err != nil {
		t.Fatal(err)
	}
	var idx index.Index
	if err := json.Unmarshal(data, &idx); err != nil || idx.EntryCount != 1 {
		t.Errorf("index = %+v, %v", idx, err)
	}

	out, _, err = run(t, dir, "ls", "--json", "--type", "note", "-t", "go")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	var rows []index.Entry
	if err := json.Unmarshal([]byte(out), &rows); err != nil || len(rows) != 1 || rows[0].ID != id {
		t.Errorf("ls = %q, %v", out, err)
	}

	if _, _, err := run(t, dir, "rm", id); err != nil {
		t.Fatalf("rm: %v", err)
	}
	_, _, err = run(t, dir, "get", id)
	if !errors.Is(err, apperr.ErrEntryNotFound) {
		t.Errorf("get after rm = %v, want entry not found", err)
	}
}

func TestCLI_ValidateFailsOnErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, dir, "init", "kb"); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "entries", "aa", "aa000001.md")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("no front matter\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, dir, "validate")
	if !errors.Is(err, errReported) {
		t.Fatalf("validate err = %v, want errReported", err)
	}
	if !strings.Contains(out, "[schema]") {
		t.Errorf("validate output = %q", out)
	}
}

func TestCLI_FlagsResetBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, dir, "init", "kb"); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, dir, "validate")
	if err != nil || !strings.HasPrefix(out, "✓ 0 entries checked") {
		t.Fatalf("first validate = %q, %v", out, err)
	}
	if _, _, err := run(t, dir, "ls", "--json", "-t", "go"); err != nil {
		t.Fatalf("ls --json: %v", err)
	}
	out, _, err = run(t, dir, "validate")
	if err != nil || !strings.HasPrefix(out, "✓ 0 entries checked") {
		t.Errorf("validate after ls --json = %q, %v", out, err)
	}

	out, _, err = run(t, dir, "new", "-t", "rust", "note", "Borrowing")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m := createdRe.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("new output = %q", out)
	}
	out, _, err = run(t, dir, "get", "--json", m[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.Contains(out, `"go"`) || !strings.Contains(out, `"rust"`) {
		t.Errorf("tags leaked from an earlier run: %s", out)
	}
}

func TestCLI_FixRelocates(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := run(t, dir, "init", "kb"); err != nil {
		t.Fatal(err)
	}
	wrong := filepath.Join(dir, "entries", "zz", "misplaced.md")
	if err := os.MkdirAll(filepath.Dir(wrong), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\nid: \"ab000001\"\ntitle: T\ntype: note\ntags: []\ncreated: 2024-01-15\n---\n\nbody\n"
	if err := os.WriteFile(wrong, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, dir, "fix")
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(out, "entries/zz/misplaced.md -> entries/ab/ab000001.md") {
		t.Errorf("fix output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "entries", "ab", "ab000001.md")); err != nil {
		t.Errorf("entry not moved: %v", err)
	}
}

func TestCLI_RepoNotFound(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "validate")
	if !errors.Is(err, apperr.ErrRepoNotFound) {
		t.Fatalf("err = %v, want repo not found", err)
	}
	var stderr bytes.Buffer
	if code := exitCode(err, &stderr); code != 1 || !strings.Contains(stderr.String(), "error:") {
		t.Errorf("exitCode = %d, stderr = %q", code, stderr.String())
	}
}
