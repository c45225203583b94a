package catalog_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/lkr/internal/catalog"
	"github.com/starford/lkr/internal/testutil"
)

var discard = slog.New(slog.DiscardHandler)

func TestSync_IncrementalAndStale(t *testing.T) {
	r := testutil.TestRepo(t)
	db := testutil.TestCatalog(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Tags: []string{"go"}})
	pb := testutil.WriteDoc(t, r, testutil.Doc{ID: "bb000002", Related: []string{"aa000001"}})
	testutil.WriteFile(t, r, "entries/cc/cc000003.md", "not an entry\n")

	st, err := catalog.Sync(db, r, discard)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if st.Indexed != 2 || st.Skipped != 1 || st.Removed != 0 {
		t.Errorf("first sync = %+v", st)
	}

	st, err = catalog.Sync(db, r, discard)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if st.Indexed != 0 || st.Removed != 0 {
		t.Errorf("unchanged repo resynced: %+v", st)
	}

	back, _ := db.Backlinks("aa000001")
	if len(back) != 1 || back[0].Path != "entries/bb/bb000002.md" {
		t.Errorf("Backlinks = %+v", back)
	}

	if err := os.Remove(pb); err != nil {
		t.Fatal(err)
	}
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001", Title: "Renamed", Tags: []string{"go"}})

	st, err = catalog.Sync(db, r, discard)
	if err != nil {
		t.Fatalf("third Sync: %v", err)
	}
	if st.Indexed != 1 || st.Removed != 1 {
		t.Errorf("third sync = %+v", st)
	}
	got, _ := db.List("", "")
	if len(got) != 1 || got[0].Title != "Renamed" {
		t.Errorf("List = %+v", got)
	}
}

func TestSync_BrokenFileDropped(t *testing.T) {
	r := testutil.TestRepo(t)
	db := testutil.TestCatalog(t)
	testutil.WriteDoc(t, r, testutil.Doc{ID: "aa000001"})
	if _, err := catalog.Sync(db, r, discard); err != nil {
		t.Fatal(err)
	}

	testutil.WriteFile(t, r, "entries/aa/aa000001.md", "---\nbroken: [\n---\n")
	st, err := catalog.Sync(db, r, discard)
	if err != nil {
		t.Fatal(err)
	}
	if st.Removed != 1 {
		t.Errorf("Removed = %d, want 1", st.Removed)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}
