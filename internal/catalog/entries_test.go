package catalog_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/lkr/internal/index"
	"github.com/starford/lkr/internal/testutil"
)

func ptr(s string) *string { return &s }

func TestUpsertAndList(t *testing.T) {
	db := testutil.TestCatalog(t)
	a := index.Entry{ID: "aa000001", Path: "entries/aa/aa000001.md", Title: "A", Type: "note", Tags: []string{"go", "db"}, Created: "2024-01-15", Status: ptr("draft")}
	b := index.Entry{ID: "bb000002", Path: "entries/bb/bb000002.md", Title: "B", Type: "guide", Tags: []string{"go"}, Created: "2024-01-16", Updated: ptr("2024-02-01")}
	if err := db.Upsert(a, "sum-a", nil); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	if err := db.Upsert(b, "sum-b", []string{"aa000001"}); err != nil {
		t.Fatalf("Upsert b: %v", err)
	}

	all, err := db.List("", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]index.Entry{a, b}, all); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		tag, typ string
		want     []string
	}{
		{"db", "", []string{"aa000001"}},
		{"go", "guide", []string{"bb000002"}},
		{"", "pattern", nil},
	}
	for _, tt := range tests {
		got, err := db.List(tt.tag, tt.typ)
		if err != nil {
			t.Fatalf("List(%q, %q): %v", tt.tag, tt.typ, err)
		}
		var ids []string
		for _, e := range got {
			ids = append(ids, e.ID)
		}
		if diff := cmp.Diff(tt.want, ids); diff != "" {
			t.Errorf("List(%q, %q) mismatch (-want +got):\n%s", tt.tag, tt.typ, diff)
		}
	}

	n, err := db.Count()
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v; want 2", n, err)
	}
}

func TestUpsertReplacesTagsAndRelated(t *testing.T) {
	db := testutil.TestCatalog(t)
	e := index.Entry{ID: "aa000001", Path: "entries/aa/aa000001.md", Type: "note", Tags: []string{"old"}, Created: "2024-01-15"}
	_ = db.Upsert(e, "1", []string{"zz000009"})

	e.Tags = []string{"new"}
	if err := db.Upsert(e, "2", nil); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got, _ := db.List("old", ""); len(got) != 0 {
		t.Errorf("stale tag still listed: %+v", got)
	}
	if got, _ := db.Backlinks("zz000009"); len(got) != 0 {
		t.Errorf("stale related still linked: %+v", got)
	}
	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if sums[e.Path] != "2" {
		t.Errorf("checksum = %q, want 2", sums[e.Path])
	}
}

func TestBacklinksAndGet(t *testing.T) {
	db := testutil.TestCatalog(t)
	_ = db.Upsert(index.Entry{ID: "aa000001", Path: "entries/aa/aa000001.md", Type: "note", Tags: []string{}, Created: "2024-01-15"}, "1", nil)
	_ = db.Upsert(index.Entry{ID: "bb000002", Path: "entries/bb/bb000002.md", Type: "note", Tags: []string{}, Created: "2024-01-15"}, "2", []string{"aa000001"})
	_ = db.Upsert(index.Entry{ID: "cc000003", Path: "entries/cc/cc000003.md", Type: "note", Tags: []string{}, Created: "2024-01-15"}, "3", []string{"aa000001", "bb000002"})

	back, err := db.Backlinks("aa000001")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(back) != 2 || back[0].ID != "bb000002" || back[1].ID != "cc000003" {
		t.Errorf("Backlinks = %+v", back)
	}

	got, err := db.Get("bb000002")
	if err != nil || len(got) != 1 {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := db.Delete("entries/cc/cc000003.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	back, _ = db.Backlinks("aa000001")
	if len(back) != 1 {
		t.Errorf("after delete Backlinks = %+v, want 1", back)
	}
}
