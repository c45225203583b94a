package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/lkr/internal"
	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/mcpserver"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/outline"
	"github.com/starford/lkr/internal/repo"
	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/validate"
)

func tagFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "tag",
		Aliases: []string{"t"},
		Usage:   "Tag (repeatable)",
	}
}

func typeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "type",
		Usage: "Entry type: q-and-a, guide, pattern or note",
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print machine-readable JSON",
	}
}

func writeJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// firstTag returns the normalized value of the first --tag, or "".
func firstTag(cmd *cli.Command) (string, error) {
	tags := cmd.StringSlice("tag")
	if len(tags) == 0 {
		return "", nil
	}
	t, err := models.ParseTag(tags[0])
	if err != nil {
		return "", err
	}
	return t.Value(), nil
}

func typeFilter(cmd *cli.Command) (string, error) {
	raw := cmd.String("type")
	if raw == "" {
		return "", nil
	}
	typ, err := models.ParseEntryType(raw)
	if err != nil {
		return "", err
	}
	return typ.String(), nil
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a repository in the start directory",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Usage: "Repository description"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := repo.Init(cmd.String("dir"), cmd.Args().First(), repo.WithLogger(e.logger))
			if err != nil {
				return err
			}
			if desc := cmd.String("description"); desc != "" {
				rc, err := r.LoadConfig()
				if err != nil {
					return err
				}
				rc.Description = desc
				if err := r.SaveConfig(rc); err != nil {
					return err
				}
			}
			e.out.Success("initialized repository %q at %s", cmd.Args().First(), r.Root())
			return nil
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a draft entry from the template for its type",
		ArgsUsage: "TYPE TITLE",
		Flags: []cli.Flag{
			tagFlag(),
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "Author name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			typ, err := models.ParseEntryType(cmd.Args().First())
			if err != nil {
				return err
			}
			entry, err := repo.NewEntry(typ, cmd.Args().Get(1), cmd.StringSlice("tag"), cmd.String("author"), time.Now())
			if err != nil {
				return err
			}
			path, err := r.SaveEntry(entry)
			if err != nil {
				return err
			}
			e.out.Success("created %s at %s", entry.FrontMatter.ID, r.Rel(path))
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show an entry",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			jsonFlag(),
			&cli.BoolFlag{Name: "outline", Usage: "Show the section headings and links of the body"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			entry, err := r.ResolveEntry(normalizeID(cmd.Args().First()))
			if err != nil {
				return err
			}
			if cmd.Bool("outline") {
				o := outline.Parse(entry.Body)
				if cmd.Bool("json") {
					return writeJSON(cmd, o)
				}
				e.out.Outline(o)
				return nil
			}
			if cmd.Bool("json") {
				return writeJSON(cmd, index.Project(entry, r.Rel(entry.Path)))
			}
			e.out.EntrySummary(entry)
			return nil
		},
	}
}

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "Print the raw file of an entry",
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			data, err := r.ReadRaw(normalizeID(cmd.Args().First()))
			if err != nil {
				return err
			}
			return e.out.Raw(data)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Case-insensitive full-text search over entries",
		ArgsUsage: "QUERY",
		Flags:     []cli.Flag{tagFlag(), typeFlag(), jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			tag, err := firstTag(cmd)
			if err != nil {
				return err
			}
			s := e.cfg.Search.NewSearcher(e.logger)
			results, err := s.Search(ctx, cmd.Args().First(), r.EntriesDir(), search.Filter{
				Tag:  tag,
				Type: cmd.String("type"),
			})
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return writeJSON(cmd, results)
			}
			e.out.SearchResults(results)
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check every entry; exits non-zero when errors are found",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			report, err := validate.Validate(ctx, r)
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				e.out.ValidationReport(report)
			}
			if !report.IsClean() {
				return errReported
			}
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Regenerate " + repo.MetaDirName + "/" + repo.IndexFileName,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			idx, err := index.Write(r, time.Now())
			if err != nil {
				return err
			}
			e.out.Success("indexed %d entries into %s", idx.EntryCount, r.Rel(r.IndexPath()))
			return nil
		},
	}
}

// withCatalog discovers the repository, opens its synced catalog and runs fn.
func withCatalog(cmd *cli.Command, fn func(*env, *repo.Repo, *catalog.DB) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	r, err := e.discover(cmd)
	if err != nil {
		return err
	}
	db, err := internal.OpenCatalog(e.cfg, r, e.logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(e, r, db)
}

func lsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List entries, optionally filtered by tag and type",
		Flags: []cli.Flag{tagFlag(), typeFlag(), jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tag, err := firstTag(cmd)
			if err != nil {
				return err
			}
			typ, err := typeFilter(cmd)
			if err != nil {
				return err
			}
			return withCatalog(cmd, func(e *env, _ *repo.Repo, db *catalog.DB) error {
				entries, err := db.List(tag, typ)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return writeJSON(cmd, entries)
				}
				e.out.EntryList(entries)
				return nil
			})
		},
	}
}

func backlinksCommand() *cli.Command {
	return &cli.Command{
		Name:      "backlinks",
		Usage:     "List entries whose related list names ID",
		ArgsUsage: "ID",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return withCatalog(cmd, func(e *env, _ *repo.Repo, db *catalog.DB) error {
				entries, err := db.Backlinks(normalizeID(cmd.Args().First()))
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return writeJSON(cmd, entries)
				}
				e.out.EntryList(entries)
				return nil
			})
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete an entry file",
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			id := normalizeID(cmd.Args().First())
			if err := r.RemoveEntry(id); err != nil {
				return err
			}
			e.out.Success("removed %s", id)
			return nil
		},
	}
}

func fixCommand() *cli.Command {
	return &cli.Command{
		Name:  "fix",
		Usage: "Move misplaced entries to the path their id demands",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			seq, err := r.IterEntries()
			if err != nil {
				return err
			}
			moved, failed := 0, 0
			for entry := range seq {
				dst, ok, err := r.Relocate(entry)
				if err != nil {
					e.out.Warning("%v", err)
					failed++
					continue
				}
				if ok {
					e.out.Println(fmt.Sprintf("%s -> %s", r.Rel(entry.Path), r.Rel(dst)))
					moved++
				}
			}
			e.out.Success("moved %d entries", moved)
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Keep the catalog and index current while entry files change",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			r, err := e.discover(cmd)
			if err != nil {
				return err
			}
			if err := internal.Run(ctx,
				internal.WithConfig(e.cfg),
				internal.WithRepo(r),
				internal.WithLogger(e.logger),
			); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the repository as MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCatalog(cmd, func(e *env, r *repo.Repo, db *catalog.DB) error {
				srv := mcpserver.New(r, db, e.cfg.Search.NewSearcher(e.logger), version,
					mcpserver.WithLogger(e.logger))
				e.logger.Info("mcp: serving", slog.String("root", r.Root()))
				return srv.ServeStdio()
			})
		},
	}
}
