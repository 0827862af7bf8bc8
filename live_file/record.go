package live_file

import (
	"fmt"
	"time"

	"github.com/meysamhadeli/livefile/live_file/models"
	"github.com/zeebo/xxh3"
)

// fileContent is one loaded version of a file. A record swaps whole values of
// this type, so content, size, generation and timestamps always travel together.
type fileContent struct {
	data       []byte
	generation uint64
	hash       uint64
	loadedAt   time.Time
	modTime    time.Time
	fileSize   int64
}

// fileRecord owns one file's bytes. All fields except id and path are guarded
// by the owning FileStore's mutex.
type fileRecord struct {
	id       UID
	path     string
	current  fileContent
	refCount int
}

func newFileContent(data []byte, generation uint64, modTime time.Time, fileSize int64, now time.Time) fileContent {
	return fileContent{
		data:       data,
		generation: generation,
		hash:       xxh3.Hash(data),
		loadedAt:   now,
		modTime:    modTime,
		fileSize:   fileSize,
	}
}

// isStale reports whether the on-disk file differs from what was last loaded.
func (c fileContent) isStale(modTime time.Time, fileSize int64) bool {
	return modTime.After(c.modTime) || fileSize != c.fileSize
}

func (r *fileRecord) snapshot() models.FileSnapshot {
	return models.FileSnapshot{
		ID:         r.id,
		Path:       r.path,
		Size:       len(r.current.data),
		Generation: r.current.generation,
		RefCount:   r.refCount,
		Hash:       FormatHash(r.current.hash),
		LoadedAt:   r.current.loadedAt,
		ModTime:    r.current.modTime,
	}
}

// FormatHash renders an xxh3 content hash the way snapshots and the CLI print it.
func FormatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
