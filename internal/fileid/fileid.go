// Package fileid derives stable source IDs.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	filePrefix = "file:"
	textPrefix = "text:"
)

// FileSourceID returns a stable source ID for the given absolute path.
// Same path always yields the same ID, so re-ingesting a file updates its source record.
func FileSourceID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return filePrefix + hex.EncodeToString(hash[:])
}

// NewTextSourceID returns a random ID for typed or uploaded text.
func NewTextSourceID() string {
	return textPrefix + uuid.NewString()
}

// IsFileSourceID reports whether id was produced by FileSourceID.
func IsFileSourceID(id string) bool {
	return len(id) > len(filePrefix) && id[:len(filePrefix)] == filePrefix
}
