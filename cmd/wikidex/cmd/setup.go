package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/knowhub/wikidex/internal/chunk"
	"github.com/knowhub/wikidex/internal/config"
	"github.com/knowhub/wikidex/internal/embed"
	"github.com/knowhub/wikidex/internal/search"
	"github.com/knowhub/wikidex/internal/store"
	"github.com/knowhub/wikidex/internal/ui"
	"github.com/knowhub/wikidex/internal/version"
)

// components bundles everything a command needs to work with a
// knowledge base. Constructed once per invocation from config.
type components struct {
	cfg      *config.Config
	store    *store.Store
	resolver *version.Resolver
	engine   *search.HybridEngine
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newComponents() (*components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Storage.Dir, store.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open version store: %w", err)
	}

	embedOpts := embed.Options{
		Provider:           cfg.Embeddings.Provider,
		Dimensions:         cfg.Embeddings.Dimensions,
		SerializeInference: cfg.Embeddings.SerializeInference,
	}

	resolver, err := version.NewResolver(st, cfg.Storage.HandleCacheSize,
		version.WithChunker(chunk.NewChunker(cfg.Chunking.MaxChars)),
		version.WithEmbedOptions(embedOpts),
		version.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, err
	}

	engine := search.NewHybridEngine(embedOpts, cfg.Search.MinSimilarity,
		search.WithEngineLogger(slog.Default()))

	return &components{
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		engine:   engine,
	}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newRenderer picks the output renderer. NO_COLOR (https://no-color.org)
// forces plain output regardless of terminal detection.
func newRenderer(w io.Writer) *ui.Renderer {
	if os.Getenv("NO_COLOR") != "" {
		return ui.NewPlainRenderer(w)
	}
	return ui.NewRenderer(w)
}
