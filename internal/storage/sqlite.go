package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kioku/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		title TEXT,
		origin TEXT NOT NULL,
		path TEXT,
		content TEXT NOT NULL,
		chunk_start INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time TIMESTAMP,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sources_created_at ON sources(created_at);
	CREATE INDEX IF NOT EXISTS idx_sources_path ON sources(path);
	CREATE INDEX IF NOT EXISTS idx_sources_chunk_start ON sources(chunk_start);
	`
	_, err := db.Exec(schema)
	return err
}

const sourceColumns = `id, title, origin, path, content, chunk_start, chunk_count, size, mod_time, metadata, created_at, updated_at`

// CreateSource inserts a source.
func (s *SQLiteStorage) CreateSource(ctx context.Context, src *models.Source) error {
	metadataJSON, err := json.Marshal(src.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	src.CreatedAt = now
	src.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sources (`+sourceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.Title, src.Origin, src.Path, src.Content, src.ChunkStart, src.ChunkCount,
		src.Size, src.ModTime, string(metadataJSON), src.CreatedAt, src.UpdatedAt,
	)
	return err
}

// GetSource returns a source by ID, or ErrNotFound.
func (s *SQLiteStorage) GetSource(ctx context.Context, id string) (*models.Source, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// UpdateSource replaces an existing source's fields.
func (s *SQLiteStorage) UpdateSource(ctx context.Context, src *models.Source) error {
	metadataJSON, err := json.Marshal(src.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	src.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE sources SET title = ?, origin = ?, path = ?, content = ?, chunk_start = ?,
		 chunk_count = ?, size = ?, mod_time = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		src.Title, src.Origin, src.Path, src.Content, src.ChunkStart, src.ChunkCount,
		src.Size, src.ModTime, string(metadataJSON), src.UpdatedAt, src.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, src.ID)
	}
	return nil
}

// ListSources returns sources, newest first, with offset and limit.
func (s *SQLiteStorage) ListSources(ctx context.Context, offset, limit int) ([]*models.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM sources ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// SourceAt returns the source whose current chunk range covers position, or
// ErrNotFound. Chunks left behind by a re-ingested source belong to no source,
// and ranges reaching past size (a store that was reset) are ignored.
func (s *SQLiteStorage) SourceAt(ctx context.Context, position, size int) (*models.Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+` FROM sources
		 WHERE chunk_start <= ? AND ? < chunk_start + chunk_count AND chunk_start + chunk_count <= ?
		 ORDER BY updated_at DESC LIMIT 1`,
		position, position, size,
	)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: chunk %d", ErrNotFound, position)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// CountSources returns the total number of sources.
func (s *SQLiteStorage) CountSources(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*models.Source, error) {
	var src models.Source
	var path, metadataJSON sql.NullString
	var modTime sql.NullTime
	err := row.Scan(&src.ID, &src.Title, &src.Origin, &path, &src.Content, &src.ChunkStart,
		&src.ChunkCount, &src.Size, &modTime, &metadataJSON, &src.CreatedAt, &src.UpdatedAt)
	if err != nil {
		return nil, err
	}
	src.Path = path.String
	if modTime.Valid {
		src.ModTime = modTime.Time
	}
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &src.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &src, nil
}
