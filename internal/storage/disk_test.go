package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	index := write("knowledge.index", "hello")
	write("bleve/store/a", "ab")
	write("bleve/b", "c")
	db := write("sources.db", "1234")
	write("sources.db-wal", "56")
	bleveDir := filepath.Join(dir, "bleve")

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{index}, 5},
		{"directory tree", []string{bleveDir}, 3},
		{"file and directory", []string{index, bleveDir}, 8},
		{"missing path skipped", []string{index, filepath.Join(dir, "nope"), bleveDir}, 8},
		{"empty path skipped", []string{"", index}, 5},
		{"sqlite sidecars counted", []string{db}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d bytes, want %d", got, tt.want)
			}
		})
	}
}
