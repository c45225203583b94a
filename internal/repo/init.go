package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/lkr/internal/models"
)

const readmeTemplate = `# %s

A knowledge repository managed by lkr.

Entries live under entries/<prefix>/<id>.md. Run 'lkr validate' before
committing and 'lkr index' to refresh .knowledge/index.json.
`

// generated files that must stay out of version control.
var ignored = []string{
	MetaDirName + "/" + IndexFileName,
	MetaDirName + "/catalog.db",
}

// Init creates the repository layout under path and writes a default config.
// An existing config is overwritten; README.md is only written if absent and
// .gitignore only gains the lines it is missing.
func Init(path, name string, opts ...Option) (*Repo, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("repo: resolve path: %w", err)
	}
	for _, dir := range []string{filepath.Join(root, EntriesDirName), filepath.Join(root, MetaDirName)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("repo: mkdir %s: %w", dir, err)
		}
	}

	r, err := Open(root, opts...)
	if err != nil {
		return nil, err
	}

	if err := r.SaveConfig(models.NewRepoConfig(name)); err != nil {
		return nil, err
	}

	ok, err := r.store.Exists("README.md")
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := r.store.Write("README.md", []byte(fmt.Sprintf(readmeTemplate, name))); err != nil {
			return nil, err
		}
	}

	if err := r.ensureGitignore(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repo) ensureGitignore() error {
	existing, err := os.ReadFile(filepath.Join(r.root, ".gitignore"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("repo: read .gitignore: %w", err)
	}
	have := make(map[string]struct{})
	for _, line := range strings.Split(string(existing), "\n") {
		have[strings.TrimSpace(line)] = struct{}{}
	}

	var missing []string
	for _, line := range ignored {
		if _, ok := have[line]; !ok {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var b strings.Builder
	if trimmed := strings.TrimRight(string(existing), "\n"); trimmed != "" {
		b.WriteString(trimmed)
		b.WriteString("\n\n")
	}
	b.WriteString("# lkr\n")
	for _, line := range missing {
		b.WriteString(line + "\n")
	}
	return r.store.Write(".gitignore", []byte(b.String()))
}
