package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// HashingEmbedder generates embeddings by hashing word tokens and character
// trigrams into a fixed-width vector. It needs no network and no model
// download, and is fully deterministic: the same text always produces the
// same vector. Semantic quality is reduced compared to a learned model, but
// shared vocabulary still dominates the cosine signal.
type HashingEmbedder struct {
	dims int

	mu     sync.RWMutex
	closed bool
}

// Weights for vector generation: whole tokens carry most of the signal,
// trigrams catch morphology and typos.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// englishStopWords are filtered from token hashing so that function words do
// not dominate similarity between prose chunks.
var englishStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "to": true, "in": true, "on": true, "at": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "with": true, "for": true, "by": true, "it": true,
	"this": true, "that": true, "as": true, "from": true,
}

// wordRegex matches alphanumeric word tokens.
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewHashingEmbedder creates a hashing embedder.
// dims <= 0 selects DefaultDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Embed generates the embedding for a single text.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, e.dims), nil
	}
	return normalizeVector(e.generateVector(trimmed)), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}

// generateVector accumulates token and trigram hashes into a raw vector.
func (e *HashingEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, e.dims)

	for _, token := range tokenize(text) {
		if englishStopWords[token] {
			continue
		}
		vector[hashToIndex(token, e.dims)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for i := 0; i+ngramSize <= len(normalized); i++ {
		vector[hashToIndex(normalized[i:i+ngramSize], e.dims)] += ngramWeight
	}

	return vector
}

// tokenize splits text into lower-cased word tokens.
func tokenize(text string) []string {
	words := wordRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

// normalizeForNgrams strips everything but letters and digits.
func normalizeForNgrams(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hashToIndex maps a string onto a vector index via FNV-64.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

// Dimensions returns the embedding vector width.
func (e *HashingEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *HashingEmbedder) ModelName() string {
	return "hashing-256"
}

// Available reports readiness; always true until closed.
func (e *HashingEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close releases resources.
func (e *HashingEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
