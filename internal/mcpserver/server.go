// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the knowledge repository to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/models"
	"github.com/starford/lkr/internal/outline"
	"github.com/starford/lkr/internal/repo"
	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/validate"
)

// ContractURI is the resource URI of the entry format contract.
const ContractURI = "lkr://entry-format"

// Server wraps the MCP server with the repository tools.
type Server struct {
	mcp      *server.MCPServer
	repo     *repo.Repo
	db       catalog.Catalog
	searcher *search.Searcher
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the clock used for new entries and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server with every tool registered.
func New(r *repo.Repo, db catalog.Catalog, searcher *search.Searcher, version string, opts ...Option) *Server {
	s := &Server{
		repo:     r,
		db:       db,
		searcher: searcher,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"lkr",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	typeNames := make([]string, 0, 4)
	for _, t := range models.EntryTypes() {
		typeNames = append(typeNames, t.String())
	}

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Case-insensitive full-text search over entry files. Returns id, title, path and matching lines per entry."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
		mcp.WithString("tag", mcp.Description("Only entries carrying this tag")),
		mcp.WithString("type", mcp.Description("Only entries of this type"), mcp.Enum(typeNames...)),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Read the full Markdown source of an entry by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id (1-8 lowercase base-36 characters)")),
	), s.getEntry)

	s.mcp.AddTool(mcp.NewTool("get_entry_outline",
		mcp.WithDescription("Return the section headings and link targets of an entry body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.getEntryOutline)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a draft entry with a fresh id and the body template for its type. "+
			"Read the contract first via the get_entry_contract tool or the "+ContractURI+" resource."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Entry type"), mcp.Enum(typeNames...)),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable title")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("author", mcp.Description("Author name")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List catalogued entries, optionally filtered by tag and type."),
		mcp.WithString("tag", mcp.Description("Only entries carrying this tag")),
		mcp.WithString("type", mcp.Description("Only entries of this type"), mcp.Enum(typeNames...)),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find the entries whose related list references the given id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("validate_repo",
		mcp.WithDescription("Run every structural check over the repository and return the report."),
	), s.validateRepo)

	s.mcp.AddTool(mcp.NewTool("get_entry_contract",
		mcp.WithDescription("Returns the entry file format contract. "+
			"Call this before writing entries to ensure correct structure."),
	), s.getEntryContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Entry Format Contract",
			mcp.WithResourceDescription("Front matter fields and storage layout every entry must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// optional returns the string argument key, or "" when absent.
func optional(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.searcher.Search(ctx, query, s.repo.EntriesDir(), search.Filter{
		Tag:  optional(req, "tag"),
		Type: optional(req, "type"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.repo.ReadRaw(strings.ToLower(strings.TrimSpace(id)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getEntryOutline(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.repo.ResolveEntry(strings.ToLower(strings.TrimSpace(id)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outline.Parse(entry.Body))
}

func (s *Server) createEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := models.ParseEntryType(rawType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tags []string
	if raw := optional(req, "tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	entry, err := repo.NewEntry(typ, title, tags, optional(req, "author"), s.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.repo.SaveEntry(entry)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := catalog.Sync(s.db, s.repo, s.logger); err != nil {
		s.logger.Warn("mcp: catalog sync failed", slog.String("error", err.Error()))
	}

	return jsonResult(map[string]string{
		"id":   entry.FrontMatter.ID.Value(),
		"path": s.repo.Rel(path),
	})
}

func (s *Server) listEntries(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := optional(req, "tag")
	if tag != "" {
		t, err := models.ParseTag(tag)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tag = t.Value()
	}
	entries, err := s.db.List(tag, optional(req, "type"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) getBacklinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.db.Backlinks(strings.ToLower(strings.TrimSpace(id)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return jsonResult(bl)
}

func (s *Server) validateRepo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := validate.Validate(ctx, s.repo, validate.WithNow(s.now()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validate: %v", err)), nil
	}
	return jsonResult(report)
}

func (s *Server) getEntryContract(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readContractResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}
