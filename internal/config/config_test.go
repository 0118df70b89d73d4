package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "hashing", cfg.Embeddings.Provider)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 2000, cfg.Chunking.MaxChars)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// Given: a partial config file
	path := filepath.Join(t.TempDir(), "wikidex.yaml")
	content := "search:\n  top_k: 12\nchunking:\n  max_chars: 800\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When: loading
	cfg, err := Load(path)
	require.NoError(t, err)

	// Then: file values win, untouched fields keep defaults
	assert.Equal(t, 12, cfg.Search.TopK)
	assert.Equal(t, 800, cfg.Chunking.MaxChars)
	assert.Equal(t, "hashing", cfg.Embeddings.Provider)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wikidex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  top_k: 12\n"), 0o644))
	t.Setenv("WIKIDEX_TOP_K", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.TopK)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty storage dir", func(c *Config) { c.Storage.Dir = "" }},
		{"tiny max chars", func(c *Config) { c.Chunking.MaxChars = 10 }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "gpu9000" }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"similarity out of range", func(c *Config) { c.Search.MinSimilarity = 1.5 }},
		{"unknown transport", func(c *Config) { c.Server.Transport = "sse" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "wikidex.yaml")
	cfg := Default()
	cfg.Search.TopK = 9
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Search.TopK)
}
