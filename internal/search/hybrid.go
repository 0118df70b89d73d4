package search

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/knowhub/wikidex/internal/embed"
	"github.com/knowhub/wikidex/internal/version"
)

// DefaultTopK is the result-list size when the caller does not specify one.
const DefaultTopK = 5

// HybridEngine fans a query out to the pattern, semantic and keyword
// streams and merges their results into one ranked list. A degraded stream
// (unavailable embedder, malformed pattern) narrows the result set; it
// never fails the query.
type HybridEngine struct {
	regex    Searcher
	semantic Searcher
	keyword  Searcher
	logger   *slog.Logger
}

// EngineOption configures a HybridEngine.
type EngineOption func(*HybridEngine)

// WithEngineLogger sets the structured logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *HybridEngine) { e.logger = logger }
}

// WithSemanticSearcher overrides the semantic stream.
func WithSemanticSearcher(s Searcher) EngineOption {
	return func(e *HybridEngine) { e.semantic = s }
}

// NewHybridEngine creates an engine with the given embedding configuration
// and semantic noise floor.
func NewHybridEngine(embedOpts embed.Options, minSimilarity float64, opts ...EngineOption) *HybridEngine {
	e := &HybridEngine{
		regex:   NewRegexSearcher(),
		keyword: NewKeywordSearcher(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.semantic == nil {
		e.semantic = NewSemanticSearcher(embedOpts, minSimilarity, e.logger)
	}
	return e
}

// Search runs all streams in parallel and merges their output. Results are
// deduplicated by chunk id keeping the highest score, ordered by score
// descending with stream priority then chunk id as tie-breakers, and
// truncated to topK. The ordering is fully deterministic: identical calls
// against the same handle return identical lists.
//
// An empty corpus or a query nothing matches yields an empty slice.
func (e *HybridEngine) Search(ctx context.Context, h *version.Handle, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	plan := NewPlan(query)

	streams := []Searcher{e.regex, e.semantic, e.keyword}
	buckets := make([][]Result, len(streams))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range streams {
		g.Go(func() error {
			results, err := s.Search(gctx, h, plan)
			if err != nil {
				return err
			}
			buckets[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := merge(buckets)
	if len(merged) > topK {
		merged = merged[:topK]
	}

	e.logger.Debug("hybrid_search",
		slog.String("version", h.ID()),
		slog.String("query", query),
		slog.Bool("pattern", plan.HasPattern),
		slog.Int("results", len(merged)))
	return merged, nil
}

// merge deduplicates by chunk id keeping the highest score (stream
// priority breaks score ties) and sorts the survivors.
func merge(buckets [][]Result) []Result {
	best := make(map[string]Result)
	for _, bucket := range buckets {
		for _, r := range bucket {
			cur, seen := best[r.ChunkID]
			if !seen || r.Score > cur.Score ||
				(r.Score == cur.Score && r.Stream.priority() > cur.Stream.priority()) {
				best[r.ChunkID] = r
			}
		}
	}

	merged := make([]Result, 0, len(best))
	for _, r := range best {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if pi, pj := merged[i].Stream.priority(), merged[j].Stream.priority(); pi != pj {
			return pi > pj
		}
		return merged[i].ChunkID < merged[j].ChunkID
	})
	return merged
}
