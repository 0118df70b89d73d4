package embed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SingleInstance(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	// When many goroutines request the provider at the same time
	const workers = 32
	results := make([]Embedder, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emb, err := Default(Options{Provider: "hashing"})
			assert.NoError(t, err)
			results[i] = emb
		}(i)
	}
	wg.Wait()

	// Then every caller sees the same instance
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestDefault_NoneProviderUnavailable(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	// When the backend is disabled
	emb, err := Default(Options{Provider: "none"})

	// Then callers get ErrUnavailable, and the failure is remembered
	assert.Nil(t, emb)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Default(Options{Provider: "hashing"})
	assert.ErrorIs(t, err, ErrUnavailable,
		"first construction decides availability for the process")
}

func TestDefault_ResetAllowsReconfiguration(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	_, err := Default(Options{Provider: "none"})
	require.ErrorIs(t, err, ErrUnavailable)

	// When the provider is reset
	ResetDefault()

	// Then a new backend can be constructed
	emb, err := Default(Options{Provider: "hashing", Dimensions: 64})
	require.NoError(t, err)
	assert.Equal(t, 64, emb.Dimensions())
}

func TestSerializedEmbedder(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	// Given a provider with serialized inference
	emb, err := Default(Options{Provider: "hashing", SerializeInference: true})
	require.NoError(t, err)
	ctx := context.Background()

	// When hammered from many goroutines
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := emb.Embed(ctx, "concurrent inference call")
			assert.NoError(t, err)
			assert.Len(t, v, DefaultDimensions)
		}()
	}
	wg.Wait()

	// Then metadata passes through the wrapper
	assert.Equal(t, "hashing-256", emb.ModelName())
	assert.True(t, emb.Available(ctx))
}
