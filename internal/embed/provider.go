package embed

import (
	"context"
	"sync"
)

// Options configures the process-wide embedding provider.
type Options struct {
	// Provider selects the backend: "hashing" or "none".
	Provider string
	// Dimensions is the vector width for the hashing backend.
	Dimensions int
	// SerializeInference funnels all Embed calls through one mutex.
	// Enable for backends not proven safe for concurrent inference.
	SerializeInference bool
}

// Process-wide provider state. The model is constructed at most once per
// process no matter how many goroutines race on first use; a failed load is
// remembered as unavailable rather than retried on every query.
var (
	defaultMu   sync.Mutex
	defaultInit bool
	defaultEmb  Embedder
)

// Default returns the process-wide embedder, constructing it on first call.
// Returns ErrUnavailable when the configured backend cannot be loaded or is
// disabled; callers must degrade, not fail.
func Default(opts Options) (Embedder, error) {
	// Fast path without a lock would need atomics; construction happens once and
	// queries hold the result, so the mutex cost is irrelevant here.
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultInit {
		if defaultEmb == nil {
			return nil, ErrUnavailable
		}
		return defaultEmb, nil
	}

	defaultInit = true
	emb := newEmbedder(opts)
	if emb == nil {
		return nil, ErrUnavailable
	}
	if opts.SerializeInference {
		emb = &serializedEmbedder{inner: emb}
	}
	defaultEmb = emb
	return defaultEmb, nil
}

// ResetDefault clears the process-wide provider. Test hook.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEmb != nil {
		_ = defaultEmb.Close()
	}
	defaultEmb = nil
	defaultInit = false
}

// newEmbedder constructs the configured backend, nil when unavailable.
func newEmbedder(opts Options) Embedder {
	switch opts.Provider {
	case "", "hashing":
		return NewHashingEmbedder(opts.Dimensions)
	default:
		// "none" and unknown providers run without a semantic stream.
		return nil
	}
}

// serializedEmbedder wraps an Embedder so inference calls never run
// concurrently against shared model state.
type serializedEmbedder struct {
	mu    sync.Mutex
	inner Embedder
}

func (s *serializedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Embed(ctx, text)
}

func (s *serializedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *serializedEmbedder) Dimensions() int { return s.inner.Dimensions() }

func (s *serializedEmbedder) ModelName() string { return s.inner.ModelName() }

func (s *serializedEmbedder) Available(ctx context.Context) bool { return s.inner.Available(ctx) }

func (s *serializedEmbedder) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}
