package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/starford/lkr/internal/parser"
)

// Backend finds the files under dir whose content contains query, ignoring
// case. Implementations return absolute paths in any order; the Searcher
// re-checks and orders them.
type Backend interface {
	Name() string
	Candidates(ctx context.Context, query, dir string) ([]string, error)
}

// DefaultTool is the external search program probed for by Select.
const DefaultTool = "rg"

// IsRipgrep reports whether tool names an rg binary.
func IsRipgrep(tool string) bool {
	return strings.TrimSuffix(filepath.Base(tool), ".exe") == DefaultTool
}

// Select returns a Ripgrep backend when tool is an rg binary on PATH,
// otherwise a Scanner.
func Select(tool string) Backend {
	if tool == "" {
		tool = DefaultTool
	}
	if !IsRipgrep(tool) {
		return Scanner{}
	}
	if p, err := exec.LookPath(tool); err == nil {
		return &Ripgrep{Path: p}
	}
	return Scanner{}
}

// Scanner reads every entry file in process. Symlinks are not followed,
// matching rg's default.
type Scanner struct{}

// Name implements Backend.
func (Scanner) Name() string { return "scan" }

// Candidates implements Backend.
func (Scanner) Candidates(ctx context.Context, query, dir string) ([]string, error) {
	needle := strings.ToLower(query)
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == dir {
				return filepath.SkipDir
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), parser.Extension) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if contains(data, needle) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search: scan %s: %w", dir, err)
	}
	return out, nil
}

// Ripgrep delegates the file scan to the rg binary at Path. Its output is
// fully buffered before it is read.
type Ripgrep struct {
	Path string
}

// Name implements Backend.
func (*Ripgrep) Name() string { return "ripgrep" }

// Candidates implements Backend.
func (r *Ripgrep) Candidates(ctx context.Context, query, dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, r.Path,
		"--files-with-matches",
		"--ignore-case",
		"--fixed-strings",
		"--no-config",
		"--no-ignore",
		"--hidden",
		"--no-messages",
		"--glob", "*"+parser.Extension,
		"--", query, dir,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		// rg exits 1 when nothing matched.
		return nil, nil
	default:
		return nil, fmt.Errorf("search: rg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var out []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		out = append(out, line)
	}
	return out, nil
}

func contains(data []byte, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(string(data)), lowerNeedle)
}
