package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kioku/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "sources.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	mtime := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	src := &models.Source{
		ID:         "file:abc",
		Title:      "notes.md",
		Origin:     models.OriginFile,
		Path:       "/docs/notes.md",
		Content:    "Some notes.",
		ChunkStart: 0,
		ChunkCount: 2,
		Size:       11,
		ModTime:    mtime,
		Metadata:   map[string]interface{}{"extension": ".md"},
	}
	if err := store.CreateSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	if src.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetSource(ctx, "file:abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "notes.md" || got.Content != "Some notes." || got.ChunkCount != 2 {
		t.Errorf("got %+v", got)
	}
	if !got.ModTime.Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", got.ModTime, mtime)
	}
	if got.Metadata["extension"] != ".md" {
		t.Errorf("Metadata = %v", got.Metadata)
	}

	src.ChunkStart, src.ChunkCount = 7, 3
	if err := store.UpdateSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetSource(ctx, "file:abc")
	if got.ChunkStart != 7 || got.ChunkCount != 3 {
		t.Errorf("update not applied: %+v", got)
	}

	n, err := store.CountSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountSources = %d, want 1", n)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if _, err := store.GetSource(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSource missing: err = %v, want ErrNotFound", err)
	}
	err := store.UpdateSource(ctx, &models.Source{ID: "missing", Origin: models.OriginText})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSource missing: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_ListSources(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		src := &models.Source{
			ID:      fmt.Sprintf("text:%d", i),
			Title:   fmt.Sprintf("Source %d", i),
			Origin:  models.OriginText,
			Content: "body",
		}
		if err := store.CreateSource(ctx, src); err != nil {
			t.Fatal(err)
		}
	}

	page, err := store.ListSources(ctx, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 3 {
		t.Fatalf("page 1: got %d sources, want 3", len(page))
	}
	rest, err := store.ListSources(ctx, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 {
		t.Errorf("page 2: got %d sources, want 2", len(rest))
	}
	seen := map[string]bool{}
	for _, s := range append(page, rest...) {
		if seen[s.ID] {
			t.Errorf("duplicate source %s across pages", s.ID)
		}
		seen[s.ID] = true
	}
	if page[0].Metadata != nil {
		t.Errorf("nil metadata should round-trip as nil, got %v", page[0].Metadata)
	}
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	src := &models.Source{ID: "text:dup", Origin: models.OriginText, Content: "x"}
	if err := store.CreateSource(ctx, src); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateSource(ctx, src); err == nil {
		t.Error("expected error for duplicate ID")
	}
}

func TestSQLiteStorage_SourceAt(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, src := range []*models.Source{
		{ID: "a", Origin: models.OriginText, Content: "a", ChunkStart: 0, ChunkCount: 2},
		{ID: "b", Origin: models.OriginText, Content: "b", ChunkStart: 2, ChunkCount: 3},
	} {
		if err := store.CreateSource(ctx, src); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		position int
		want     string
	}{
		{0, "a"}, {1, "a"}, {2, "b"}, {4, "b"}, {5, ""}, {-1, ""},
	}
	for _, tt := range tests {
		got, err := store.SourceAt(ctx, tt.position, 6)
		if tt.want == "" {
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("SourceAt(%d) err = %v, want ErrNotFound", tt.position, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SourceAt(%d): %v", tt.position, err)
		}
		if got.ID != tt.want {
			t.Errorf("SourceAt(%d) = %s, want %s", tt.position, got.ID, tt.want)
		}
	}

	// re-ingesting "a" moves it past "b"; its old positions are orphaned
	a, _ := store.GetSource(ctx, "a")
	a.ChunkStart, a.ChunkCount = 5, 1
	if err := store.UpdateSource(ctx, a); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SourceAt(ctx, 0, 6); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphaned chunk still mapped: %v", err)
	}
	if got, err := store.SourceAt(ctx, 5, 6); err != nil || got.ID != "a" {
		t.Errorf("SourceAt(5) = %v, %v", got, err)
	}

	// a store reset to two chunks no longer holds the range of "b"
	if _, err := store.SourceAt(ctx, 2, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("range past the store still mapped: %v", err)
	}
	if _, err := store.SourceAt(ctx, 4, 5); err != nil {
		t.Errorf("SourceAt(4) within the store: %v", err)
	}
}
