// Package embed provides vector embeddings for chunk and query text.
//
// The backing model is process-wide: Default() lazily constructs it exactly
// once regardless of how many goroutines race on first use. When the model
// cannot be loaded the provider reports ErrUnavailable instead of failing;
// callers degrade to the non-semantic search streams.
package embed

import (
	"context"
	"errors"
	"math"
)

// Default embedding dimensions for the hashing embedder.
const DefaultDimensions = 256

// ErrUnavailable is reported when no embedding backend could be loaded.
// It signals degraded operation, never a query failure.
var ErrUnavailable = errors.New("embedding provider unavailable")

// ErrClosed is returned by embedders after Close.
var ErrClosed = errors.New("embedder is closed")

// Embedder generates vector embeddings for text.
// Implementations must be safe for concurrent use, or be wrapped with
// Serialized before being shared.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, index-aligned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector width.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available reports whether the embedder is ready for inference.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector scales a vector to unit length.
// Zero vectors are returned as-is.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}

// Cosine returns the cosine similarity of two equal-length vectors.
// Unit-normalized inputs make this the plain dot product, but the
// denominator is computed anyway so persisted matrices from older builds
// remain comparable.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
