// Package models defines the data structures shared by storage, ingestion and the HTTP API.
package models

import "time"

// Origins of ingested sources.
const (
	OriginText   = "text"
	OriginFile   = "file"
	OriginUpload = "upload"
)

// Source is one ingested text or file. Its chunks occupy positions
// [ChunkStart, ChunkStart+ChunkCount) of the knowledge store.
type Source struct {
	ID         string                 `json:"id" db:"id"`
	Title      string                 `json:"title" db:"title"`
	Origin     string                 `json:"origin" db:"origin"`
	Path       string                 `json:"path,omitempty" db:"path"`
	Content    string                 `json:"content,omitempty" db:"content"`
	ChunkStart int                    `json:"chunk_start" db:"chunk_start"`
	ChunkCount int                    `json:"chunk_count" db:"chunk_count"`
	Size       int64                  `json:"size" db:"size"`
	ModTime    time.Time              `json:"mod_time,omitempty" db:"mod_time"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// SourceInput is the input for ingesting text.
type SourceInput struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Origin   string                 `json:"origin,omitempty"`
	Path     string                 `json:"path,omitempty"`
	Content  string                 `json:"text"`
	Size     int64                  `json:"-"`
	ModTime  time.Time              `json:"-"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
