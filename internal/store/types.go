// Package store persists immutable knowledge-base versions on disk.
//
// Each version lives in its own directory named by the truncated corpus
// hash and is never mutated after publish. A SQLite catalog maps hashes to
// directories and carries the "current" pointer. Publish is atomic: a
// version either appears complete in the catalog or not at all.
package store

import (
	"time"

	"github.com/knowhub/wikidex/internal/chunk"
	"github.com/knowhub/wikidex/internal/corpus"
)

// IDLength is the number of hash characters used for version directories
// and user-facing version ids.
const IDLength = 16

// VersionID derives the short version id from a full corpus hash.
func VersionID(hash string) string {
	if len(hash) <= IDLength {
		return hash
	}
	return hash[:IDLength]
}

// Version is the full materialized form of one published snapshot.
// Matrix is nil when the version was built without an embedding provider.
type Version struct {
	Hash       string
	CreatedAt  time.Time
	Model      string
	Dimensions int
	Documents  []corpus.Document
	Chunks     []chunk.Chunk
	// Matrix rows align with Chunks by index.
	Matrix [][]float32
	// Summaries maps document path to its extracted summary.
	Summaries map[string]string
}

// Info is the catalog row for a published version.
type Info struct {
	Hash       string    `json:"hash"`
	ID         string    `json:"id"`
	Dir        string    `json:"dir"`
	CreatedAt  time.Time `json:"created_at"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
}

// manifest is the on-disk shape of a version's structural metadata.
// Page bodies live in pages/, the embedding matrix in embeddings.gob.
type manifest struct {
	Hash       string          `json:"hash"`
	CreatedAt  time.Time       `json:"created_at"`
	Model      string          `json:"model"`
	Dimensions int             `json:"dimensions"`
	HasMatrix  bool            `json:"has_matrix"`
	Documents  []manifestPage  `json:"documents"`
	Chunks     []manifestChunk `json:"chunks"`
}

// manifestPage maps a logical document path to its file under pages/.
type manifestPage struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// manifestChunk records chunk boundaries; content is re-sliced from the
// page body on load so text is stored exactly once.
type manifestChunk struct {
	ID      string `json:"id"`
	DocPath string `json:"doc_path"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}
