package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/outline"
	"github.com/starford/lkr/internal/repo"
	"github.com/starford/lkr/internal/search"
	"github.com/starford/lkr/internal/testutil"
	"github.com/starford/lkr/internal/validate"
)

var fixedNow = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func testServer(t *testing.T) (*Server, *repo.Repo, *catalog.DB) {
	t.Helper()
	r := testutil.TestRepo(t)
	db := testutil.TestCatalog(t)
	srv := New(r, db, search.New(search.WithBackend(search.Scanner{})), "test",
		WithClock(func() time.Time { return fixedNow }))
	return srv, r, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_entries":     srv.searchEntries,
		"get_entry":          srv.getEntry,
		"get_entry_outline":  srv.getEntryOutline,
		"create_entry":       srv.createEntry,
		"list_entries":       srv.listEntries,
		"get_backlinks":      srv.getBacklinks,
		"validate_repo":      srv.validateRepo,
		"get_entry_contract": srv.getEntryContract,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndGetEntry(t *testing.T) {
	srv, _, db := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]any{
		"type":  "guide",
		"title": "Deploying",
		"tags":  "Ops, deploy",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	var created map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatalf("decode create result: %v", err)
	}
	id := created["id"]
	if want := "entries/" + id[:2] + "/" + id + ".md"; created["path"] != want {
		t.Errorf("path = %q, want %q", created["path"], want)
	}

	r = callTool(t, srv, "get_entry", map[string]any{"id": id})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, "title: Deploying") || !strings.Contains(text, "created: 2024-02-01") {
		t.Errorf("get_entry = %q", text)
	}

	rows, err := db.List("ops", "guide")
	if err != nil || len(rows) != 1 || rows[0].ID != id {
		t.Errorf("catalog after create = %+v, %v", rows, err)
	}
}

func TestCreateEntryRejectsUnknownType(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "create_entry", map[string]any{"type": "essay", "title": "x"})
	if !r.IsError {
		t.Error("expected error for unknown type")
	}
}

func TestGetEntryMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	for _, id := range []string{"zz000000", "NOT-AN-ID"} {
		r := callTool(t, srv, "get_entry", map[string]any{"id": id})
		if !r.IsError {
			t.Errorf("get_entry(%q): expected error", id)
		}
	}
}

func TestSearchEntries(t *testing.T) {
	srv, r, _ := testServer(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Tags: []string{"go"}, Body: "goroutine leak\n"})
	testutil.WriteDoc(t, r, testutil.Doc{ID: "bb000002", Tags: []string{"rust"}, Body: "no leak here\n"})

	res := callTool(t, srv, "search_entries", map[string]any{"query": "LEAK", "tag": "go"})
	var got []search.Result
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(res))
	}
	if len(got) != 1 || got[0].EntryID != "aa000001" || got[0].Path != "aa/aa000001.md" {
		t.Errorf("search = %+v", got)
	}

	res = callTool(t, srv, "search_entries", map[string]any{})
	if !res.IsError {
		t.Error("expected error without query")
	}
}

func TestListEntriesAndBacklinks(t *testing.T) {
	srv, r, db := testServer(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Type: "pattern", Tags: []string{"go"}})
	testutil.WriteDoc(t, r, testutil.Doc{ID: "bb000002", Related: []string{"aa000001"}})
	if _, err := catalog.Sync(db, r, srv.logger); err != nil {
		t.Fatal(err)
	}

	res := callTool(t, srv, "list_entries", map[string]any{"type": "pattern"})
	var rows []index.Entry
	if err := json.Unmarshal([]byte(resultText(res)), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "aa000001" {
		t.Errorf("list_entries = %+v", rows)
	}

	res = callTool(t, srv, "get_backlinks", map[string]any{"id": "aa000001"})
	if !strings.Contains(resultText(res), `"id": "bb000002"`) {
		t.Errorf("backlinks = %s", resultText(res))
	}

	res = callTool(t, srv, "get_backlinks", map[string]any{"id": "bb000002"})
	if resultText(res) != "no backlinks found" {
		t.Errorf("backlinks = %q, want none", resultText(res))
	}
}

func TestValidateRepo(t *testing.T) {
	srv, r, _ := testServer(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Related: []string{"zz999999"}, Updated: "2024-01-20"})

	res := callTool(t, srv, "validate_repo", nil)
	var report validate.Report
	if err := json.Unmarshal([]byte(resultText(res)), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Errors != 1 || report.EntriesChecked != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestEntryContract(t *testing.T) {
	srv, _, _ := testServer(t)
	if text := resultText(callTool(t, srv, "get_entry_contract", nil)); !strings.Contains(text, "entries/k3/k3f9a0x2.md") {
		t.Errorf("contract missing layout rule: %q", text)
	}
	contents, err := srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}

func TestGetEntryOutline(t *testing.T) {
	srv, r, _ := testServer(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Body: "## Summary\n\nsee [go](https://go.dev)\n"})

	res := callTool(t, srv, "get_entry_outline", map[string]any{"id": "AA000001"})
	var o outline.Outline
	if err := json.Unmarshal([]byte(resultText(res)), &o); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(res))
	}
	if len(o.Headings) != 1 || o.Headings[0].Text != "Summary" || len(o.Links) != 1 {
		t.Errorf("outline = %+v", o)
	}
}
