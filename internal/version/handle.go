// Package version resolves corpora to immutable published snapshots.
//
// A Handle is the in-memory view of one snapshot. Handles are never mutated
// after construction, so any number of searches can share one concurrently
// without locking.
package version

import (
	"time"

	"github.com/knowhub/wikidex/internal/chunk"
	"github.com/knowhub/wikidex/internal/corpus"
	"github.com/knowhub/wikidex/internal/store"
)

// Handle is an immutable snapshot of one knowledge-base version: documents,
// chunks, per-chunk token sets, and the embedding matrix when one was built.
type Handle struct {
	hash      string
	createdAt time.Time
	model     string
	dims      int
	corpus    *corpus.Corpus
	chunks    []chunk.Chunk
	tokenSets []map[string]struct{}
	matrix    [][]float32
	summaries map[string]string
}

// newHandle materializes a handle from a stored version, computing the
// per-chunk token sets used by lexical matching.
func newHandle(v *store.Version) *Handle {
	tokenSets := make([]map[string]struct{}, len(v.Chunks))
	for i, c := range v.Chunks {
		tokenSets[i] = chunk.TokenSet(c.Content)
	}
	return &Handle{
		hash:      v.Hash,
		createdAt: v.CreatedAt,
		model:     v.Model,
		dims:      v.Dimensions,
		corpus:    corpus.FromDocuments(v.Documents),
		chunks:    v.Chunks,
		tokenSets: tokenSets,
		matrix:    v.Matrix,
		summaries: v.Summaries,
	}
}

// Hash returns the full corpus hash.
func (h *Handle) Hash() string { return h.hash }

// ID returns the short version id used for directories and display.
func (h *Handle) ID() string { return store.VersionID(h.hash) }

// CreatedAt returns the publish timestamp.
func (h *Handle) CreatedAt() time.Time { return h.createdAt }

// Model returns the embedding model name, or "none" for versions built
// without a provider.
func (h *Handle) Model() string { return h.model }

// Dimensions returns the embedding vector width, zero when no matrix exists.
func (h *Handle) Dimensions() int { return h.dims }

// Documents returns the documents in canonical order.
// Callers must not mutate the returned slice.
func (h *Handle) Documents() []corpus.Document { return h.corpus.Documents() }

// Page returns a document body by path, tolerating the usual slash and
// underscore spelling variants.
func (h *Handle) Page(path string) (corpus.Document, bool) { return h.corpus.Get(path) }

// Chunks returns all chunks in document order.
// Callers must not mutate the returned slice.
func (h *Handle) Chunks() []chunk.Chunk { return h.chunks }

// ChunkTokens returns the token set of chunk i.
func (h *Handle) ChunkTokens(i int) map[string]struct{} { return h.tokenSets[i] }

// Matrix returns the embedding matrix aligned with Chunks, nil when the
// version was built without an embedding provider.
func (h *Handle) Matrix() [][]float32 { return h.matrix }

// Summaries maps document path to its extracted summary.
func (h *Handle) Summaries() map[string]string { return h.summaries }

// Summary returns the extracted summary for a page path.
func (h *Handle) Summary(path string) (string, bool) {
	s, ok := h.summaries[path]
	return s, ok
}
