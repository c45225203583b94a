package catalog

import (
	"fmt"
	"log/slog"

	"github.com/starford/lkr/internal/checksum"
	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/parser"
	"github.com/starford/lkr/internal/repo"
)

// Stats summarizes one Sync pass.
type Stats struct {
	Indexed int
	Removed int
	Skipped int
}

// Sync walks the entries directory and brings the catalog up to date:
//   - new or changed files are parsed and upserted
//   - files that no longer parse are dropped from the catalog
//   - files removed from disk are deleted from the catalog
func Sync(db Catalog, r *repo.Repo, logger *slog.Logger) (Stats, error) {
	var st Stats
	metas, err := r.Store().List(repo.EntriesDirName, parser.Extension)
	if err != nil {
		return st, fmt.Errorf("catalog: list entries: %w", err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return st, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			disk[m.Path] = struct{}{}
			continue
		}

		data, err := r.Store().Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, r, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			st.Skipped++
			continue
		}
		disk[m.Path] = struct{}{}
		st.Indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		st.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return st, nil
}

// indexFile parses data and upserts it under rel, the slash-separated path
// relative to the repository root.
func indexFile(db Catalog, r *repo.Repo, rel string, data []byte) error {
	abs, err := r.Store().Abs(rel)
	if err != nil {
		return err
	}
	e, err := parser.ParseBytes(abs, data)
	if err != nil {
		return err
	}
	related := make([]string, len(e.FrontMatter.Related))
	for i, id := range e.FrontMatter.Related {
		related[i] = id.Value()
	}
	return db.Upsert(index.Project(e, rel), checksum.Sum(data), related)
}
