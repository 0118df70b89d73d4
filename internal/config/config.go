// Package config loads, validates, and persists wikidex configuration.
//
// Resolution order (lowest to highest priority):
//  1. built-in defaults
//  2. config file (--config path or ./wikidex.yaml)
//  3. WIKIDEX_* environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete wikidex configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Storage    StorageConfig    `yaml:"storage"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Search     SearchConfig     `yaml:"search"`
	Watch      WatchConfig      `yaml:"watch"`
	Server     ServerConfig     `yaml:"server"`
}

// StorageConfig configures the on-disk version store.
type StorageConfig struct {
	// Dir is the root of the content-addressed version store.
	Dir string `yaml:"dir"`
	// HandleCacheSize bounds the in-memory LRU of loaded version handles.
	HandleCacheSize int `yaml:"handle_cache_size"`
}

// ChunkingConfig configures document decomposition.
type ChunkingConfig struct {
	// MaxChars is the upper bound on chunk size in bytes. Paragraphs larger
	// than this are hard-split so embeddings stay within model input limits.
	MaxChars int `yaml:"max_chars"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend. "hashing" is the only
	// built-in; "none" disables the semantic stream entirely.
	Provider string `yaml:"provider"`
	// Dimensions is the embedding vector width.
	Dimensions int `yaml:"dimensions"`
	// SerializeInference funnels Embed calls through one mutex. Enable for
	// backends not proven safe for concurrent inference.
	SerializeInference bool `yaml:"serialize_inference"`
}

// SearchConfig configures hybrid search.
type SearchConfig struct {
	// TopK is the default result count.
	TopK int `yaml:"top_k"`
	// MinSimilarity is the raw-cosine noise floor for the semantic stream.
	MinSimilarity float64 `yaml:"min_similarity"`
}

// WatchConfig configures the corpus directory watcher.
type WatchConfig struct {
	// Debounce is the window for coalescing file events.
	Debounce time.Duration `yaml:"debounce"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Dir:             defaultStorageDir(),
			HandleCacheSize: 8,
		},
		Chunking: ChunkingConfig{
			MaxChars: 2000,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "hashing",
			Dimensions: 256,
		},
		Search: SearchConfig{
			TopK:          5,
			MinSimilarity: 0.22,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".wikidex", "versions")
	}
	return filepath.Join(home, ".wikidex", "versions")
}

// Load reads configuration from path, layered over defaults and under
// environment overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = "wikidex.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir must not be empty")
	}
	if c.Storage.HandleCacheSize <= 0 {
		return fmt.Errorf("storage.handle_cache_size must be positive, got %d", c.Storage.HandleCacheSize)
	}
	if c.Chunking.MaxChars < 200 {
		return fmt.Errorf("chunking.max_chars must be at least 200, got %d", c.Chunking.MaxChars)
	}
	if c.Embeddings.Provider != "hashing" && c.Embeddings.Provider != "none" {
		return fmt.Errorf("embeddings.provider must be \"hashing\" or \"none\", got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	if c.Search.MinSimilarity < 0 || c.Search.MinSimilarity >= 1 {
		return fmt.Errorf("search.min_similarity must be in [0,1), got %g", c.Search.MinSimilarity)
	}
	if c.Server.Transport != "stdio" {
		return fmt.Errorf("server.transport %q not supported (supported: stdio)", c.Server.Transport)
	}
	return nil
}

// applyEnv overrides config fields from WIKIDEX_* environment variables.
func applyEnv(c *Config) {
	if v := os.Getenv("WIKIDEX_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("WIKIDEX_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.TopK = n
		}
	}
	if v := os.Getenv("WIKIDEX_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("WIKIDEX_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}
