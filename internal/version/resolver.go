package version

import (
	"context"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/knowhub/wikidex/internal/chunk"
	"github.com/knowhub/wikidex/internal/corpus"
	"github.com/knowhub/wikidex/internal/embed"
	wikierrors "github.com/knowhub/wikidex/internal/errors"
	"github.com/knowhub/wikidex/internal/store"
	"github.com/knowhub/wikidex/internal/summary"
)

// DefaultCacheSize bounds the number of resolved handles kept in memory.
const DefaultCacheSize = 8

// Resolver maps corpora to published version handles, building and
// publishing new versions on first sight of a hash. Builds run at most once
// per hash in-process; concurrent callers for the same hash share one
// in-flight build and its result.
type Resolver struct {
	store      *store.Store
	chunker    *chunk.Chunker
	summarizer *summary.Summarizer
	embedOpts  embed.Options
	logger     *slog.Logger

	group singleflight.Group
	cache *lru.Cache[string, *Handle]

	mu       sync.Mutex
	lastHash string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithChunker overrides the default chunker.
func WithChunker(c *chunk.Chunker) Option {
	return func(r *Resolver) { r.chunker = c }
}

// WithEmbedOptions sets the embedding provider configuration.
func WithEmbedOptions(opts embed.Options) Option {
	return func(r *Resolver) { r.embedOpts = opts }
}

// WithSummarizer overrides the default summarizer.
func WithSummarizer(s *summary.Summarizer) Option {
	return func(r *Resolver) { r.summarizer = s }
}

// NewResolver creates a resolver over the given store.
func NewResolver(st *store.Store, cacheSize int, opts ...Option) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Handle](cacheSize)
	if err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeInternal, "create handle cache", err)
	}

	r := &Resolver{
		store:      st,
		chunker:    chunk.NewChunker(chunk.DefaultMaxChars),
		summarizer: summary.New(summary.DefaultMaxLength),
		logger:     slog.Default(),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the handle for the corpus, loading it from the store or
// building and publishing it when the hash has never been seen. The same
// corpus content always resolves to the same version id.
func (r *Resolver) Resolve(ctx context.Context, c *corpus.Corpus) (*Handle, error) {
	hash := c.Hash()
	if h, ok := r.cache.Get(hash); ok {
		return h, nil
	}

	// singleflight collapses concurrent resolves of the same hash into one
	// build; a failed flight is released so waiters see the error and a
	// later call can retry.
	v, err, _ := r.group.Do(hash, func() (any, error) {
		if h, ok := r.cache.Get(hash); ok {
			return h, nil
		}
		h, err := r.loadOrBuild(ctx, hash, c)
		if err != nil {
			return nil, err
		}
		r.cache.Add(hash, h)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// ResolveHash returns the handle for an already-published version by hash
// or short id prefix match against the catalog.
func (r *Resolver) ResolveHash(ctx context.Context, hash string) (*Handle, error) {
	full, err := r.expandID(hash)
	if err != nil {
		return nil, err
	}
	if h, ok := r.cache.Get(full); ok {
		return h, nil
	}
	v, err := r.loadStored(full)
	if err != nil {
		return nil, err
	}
	h := newHandle(v)
	r.cache.Add(full, h)
	return h, nil
}

// Current returns the most recently published version, or nil when the
// store is empty.
func (r *Resolver) Current(ctx context.Context) (*Handle, error) {
	hash, ok, err := r.store.Current()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.ResolveHash(ctx, hash)
}

// Versions lists all published versions, newest first.
func (r *Resolver) Versions() ([]store.Info, error) {
	return r.store.Versions()
}

// HasChanged reports whether the corpus content differs from the last
// version this resolver synced. Before the first sync it reports false:
// there is no previous version to have changed from.
func (r *Resolver) HasChanged(c *corpus.Corpus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastHash != "" && r.lastHash != c.Hash()
}

// Sync resolves the corpus and reports whether the content changed since
// the previous sync. The first sync always reports changed=false, matching
// change-notification semantics: nothing existed before to change from.
func (r *Resolver) Sync(ctx context.Context, c *corpus.Corpus) (bool, *Handle, error) {
	h, err := r.Resolve(ctx, c)
	if err != nil {
		return false, nil, err
	}

	r.mu.Lock()
	prev := r.lastHash
	r.lastHash = h.Hash()
	r.mu.Unlock()

	changed := prev != "" && prev != h.Hash()
	if changed {
		r.logger.Info("knowledge_base_changed",
			slog.String("old_version", store.VersionID(prev)),
			slog.String("new_version", h.ID()))
	}
	return changed, h, nil
}

// loadOrBuild fetches a published version or builds it from the corpus.
func (r *Resolver) loadOrBuild(ctx context.Context, hash string, c *corpus.Corpus) (*Handle, error) {
	v, err := r.loadStored(hash)
	if err == nil {
		return newHandle(v), nil
	}
	if wikierrors.GetCode(err) != wikierrors.ErrCodeVersionNotFound {
		return nil, err
	}
	return r.build(ctx, hash, c)
}

// loadStored loads a version from disk, repairing a corrupt embedding
// matrix by re-embedding when the provider is available. Chunk boundaries
// are content-addressed, so the repaired matrix is identical to the one a
// fresh build would produce.
func (r *Resolver) loadStored(hash string) (*store.Version, error) {
	v, err := r.store.Load(hash)
	if err == nil {
		return v, nil
	}
	if wikierrors.GetCode(err) != wikierrors.ErrCodeMatrixCorrupt || v == nil {
		return nil, err
	}

	emb, embErr := r.embedder()
	if embErr != nil {
		// Provider gone: serve the version without semantic search rather
		// than failing the load.
		r.logger.Warn("matrix_repair_skipped",
			slog.String("version", store.VersionID(hash)),
			slog.String("error", embErr.Error()))
		return v, nil
	}

	matrix, embErr := r.embedChunks(context.Background(), emb, v.Chunks)
	if embErr != nil {
		r.logger.Warn("matrix_repair_failed",
			slog.String("version", store.VersionID(hash)),
			slog.String("error", embErr.Error()))
		return v, nil
	}
	if err := r.store.WriteMatrix(hash, matrix, emb.Dimensions()); err != nil {
		r.logger.Warn("matrix_repair_not_persisted",
			slog.String("version", store.VersionID(hash)),
			slog.String("error", err.Error()))
	}
	v.Matrix = matrix
	v.Dimensions = emb.Dimensions()
	v.Model = emb.ModelName()
	return v, nil
}

// build chunks, embeds, summarizes and publishes a new version. An
// unavailable embedding provider degrades the build to a matrix-less
// version; a live inference failure aborts it.
func (r *Resolver) build(ctx context.Context, hash string, c *corpus.Corpus) (*Handle, error) {
	start := time.Now()

	docs := c.Documents()
	var chunks []chunk.Chunk
	for _, doc := range docs {
		chunks = append(chunks, r.chunker.Chunk(doc)...)
	}

	v := &store.Version{
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
		Model:     "none",
		Documents: docs,
		Chunks:    chunks,
		Summaries: r.summarizer.SummarizeAll(docs),
	}

	emb, err := r.embedder()
	if wikierrors.IsUnavailable(err) {
		r.logger.Warn("semantic_search_degraded",
			slog.String("version", store.VersionID(hash)),
			slog.String("reason", "embedding provider unavailable"))
	} else if err != nil {
		return nil, err
	} else {
		matrix, err := r.embedChunks(ctx, emb, chunks)
		if err != nil {
			return nil, err
		}
		v.Matrix = matrix
		v.Model = emb.ModelName()
		v.Dimensions = emb.Dimensions()
	}

	if err := r.store.Publish(v); err != nil {
		return nil, err
	}

	r.logger.Info("version_built",
		slog.String("version", store.VersionID(hash)),
		slog.Int("pages", len(docs)),
		slog.Int("chunks", len(chunks)),
		slog.Duration("elapsed", time.Since(start)))
	return newHandle(v), nil
}

// embedder returns the process-wide embedding provider, typing construction
// failure as the degraded-mode embedding-unavailable error.
func (r *Resolver) embedder() (embed.Embedder, error) {
	emb, err := embed.Default(r.embedOpts)
	if err != nil {
		return nil, wikierrors.EmbeddingUnavailable("embedding provider unavailable", err)
	}
	return emb, nil
}

// embedChunks produces the embedding matrix for chunks in chunk order.
func (r *Resolver) embedChunks(ctx context.Context, emb embed.Embedder, chunks []chunk.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	matrix, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeEmbedFailed, "embed chunks", err)
	}
	return matrix, nil
}

// expandID resolves a short version id to the full hash via the catalog.
// Full hashes pass through unchanged.
func (r *Resolver) expandID(id string) (string, error) {
	if len(id) > store.IDLength {
		return id, nil
	}
	infos, err := r.store.Versions()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.ID == id {
			return info.Hash, nil
		}
	}
	return "", wikierrors.New(wikierrors.ErrCodeVersionNotFound, "no version with id", nil).
		WithDetail("version", id)
}
