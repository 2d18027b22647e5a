package keyword

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kioku/internal/models"
)

func newTestIndex(t *testing.T, path string) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsContent(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()

	src := &models.Source{
		ID:      "file:abc123",
		Title:   "Monthly Report May 2023.docx",
		Origin:  models.OriginFile,
		Content: "This report mentions Omnisyan and other findings. The Bayes app is also referenced.",
	}
	if err := idx.Index(ctx, src); err != nil {
		t.Fatalf("Index: %v", err)
	}

	for _, q := range []string{"Omnisyan", "bayes"} {
		res, err := idx.Search(ctx, q, 10, 0)
		if err != nil {
			t.Fatalf("Search %q: %v", q, err)
		}
		if len(res.Hits) == 0 {
			t.Fatalf("expected a hit for %q", q)
		}
		if res.Hits[0].ID != src.ID {
			t.Errorf("first hit for %q = %q, want %q", q, res.Hits[0].ID, src.ID)
		}
		if res.Fuzzy {
			t.Errorf("exact query %q should not be fuzzy", q)
		}
	}
}

func TestBleveIndex_TitleRanksAboveContent(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()

	_ = idx.Index(ctx, &models.Source{ID: "a", Title: "Shopping list", Content: "Remember the telescope for the trip."})
	_ = idx.Index(ctx, &models.Source{ID: "b", Title: "Telescope manual", Content: "How to align the mirrors."})

	res, err := idx.Search(ctx, "telescope", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(res.Hits))
	}
	if res.Hits[0].ID != "b" {
		t.Errorf("title match should rank first, got %q", res.Hits[0].ID)
	}
}

func TestBleveIndex_FuzzyFallback(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()
	_ = idx.Index(ctx, &models.Source{ID: "doc", Title: "Notes", Content: "Photosynthesis happens in chloroplasts."})

	res, err := idx.Search(ctx, "chloroplasst", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 1 || !res.Fuzzy {
		t.Fatalf("expected one fuzzy hit, got %+v", res)
	}

	res, err = idx.Search(ctx, "zzzzzzzz", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 0 || res.Fuzzy {
		t.Errorf("expected no hits, got %+v", res)
	}
}

func TestBleveIndex_Pagination(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = idx.Index(ctx, &models.Source{ID: fmt.Sprintf("s%d", i), Content: "shared keyword"})
	}
	res, err := idx.Search(ctx, "keyword", 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
	if len(res.Hits) != 1 {
		t.Errorf("last page: got %d hits, want 1", len(res.Hits))
	}
}

func TestBleveIndex_ReopenAndDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	ctx := context.Background()

	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.Index(ctx, &models.Source{ID: "one", Content: "persistent words"})
	_ = idx.Index(ctx, &models.Source{ID: "two", Content: "other words"})
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := newTestIndex(t, path)
	n, err := reopened.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DocCount = %d, want 2", n)
	}
	if err := reopened.Delete(ctx, "one"); err != nil {
		t.Fatal(err)
	}
	res, _ := reopened.Search(ctx, "persistent", 10, 0)
	if len(res.Hits) != 0 {
		t.Errorf("deleted source still found: %+v", res.Hits)
	}
}

func TestTokenizeQuery(t *testing.T) {
	got := tokenizeQuery("  Hello, World?  foo ")
	want := []string{"hello", "world", "foo"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d = %q, want %q", i, got[i], want[i])
		}
	}
}
