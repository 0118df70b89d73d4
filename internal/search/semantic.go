package search

import (
	"context"
	"log/slog"

	"github.com/knowhub/wikidex/internal/embed"
	"github.com/knowhub/wikidex/internal/version"
)

// DefaultMinSimilarity is the raw-cosine noise floor below which a chunk is
// considered unrelated to the query. The hashing embedder shares trigram
// dimensions between morphologically unrelated words, which produces raw
// cosines just under 0.2 on short texts; a genuine single-shared-term hit
// sits near 0.25. The floor splits that gap.
const DefaultMinSimilarity = 0.22

// SemanticSearcher ranks chunks by embedding similarity. Raw cosine values
// below the noise floor are dropped; survivors are rescaled into the
// [0.25, 1.0] band so even a marginal semantic hit outranks a strong
// keyword-only hit.
type SemanticSearcher struct {
	embedOpts     embed.Options
	minSimilarity float64
	logger        *slog.Logger
}

// NewSemanticSearcher creates the semantic stream. minSimilarity <= 0
// selects DefaultMinSimilarity.
func NewSemanticSearcher(embedOpts embed.Options, minSimilarity float64, logger *slog.Logger) *SemanticSearcher {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticSearcher{
		embedOpts:     embedOpts,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Search embeds the cleaned query and scores it against every persisted
// chunk vector. Degraded conditions (no provider, no matrix, query too
// short to embed meaningfully) yield an empty result, never an error: the
// other streams still serve the query.
func (s *SemanticSearcher) Search(ctx context.Context, h *version.Handle, plan *QueryPlan) ([]Result, error) {
	matrix := h.Matrix()
	if matrix == nil || len(plan.Cleaned) < 3 {
		return nil, nil
	}

	emb, err := embed.Default(s.embedOpts)
	if err != nil {
		s.logger.Debug("semantic_stream_skipped",
			slog.String("reason", "embedding provider unavailable"))
		return nil, nil
	}

	queryVec, err := emb.Embed(ctx, plan.Cleaned)
	if err != nil {
		s.logger.Warn("query_embedding_failed", slog.String("error", err.Error()))
		return nil, nil
	}

	chunks := h.Chunks()
	var results []Result
	for i, row := range matrix {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sim := embed.Cosine(queryVec, row)
		if sim < s.minSimilarity {
			continue
		}
		c := chunks[i]
		results = append(results, Result{
			ChunkID: c.ID,
			DocPath: c.DocPath,
			Score:   rescale(sim),
			Stream:  StreamSemantic,
			Snippet: snippet(c.Content, 0),
		})
	}
	return results, nil
}

// rescale maps a raw similarity onto the semantic score band [0.25, 1.0].
func rescale(sim float64) float64 {
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return SemanticScoreMin + (1-SemanticScoreMin)*sim
}
