// Package mcp exposes the knowledge base to AI clients over the Model
// Context Protocol: hybrid search, version resolution, change detection and
// page retrieval, all pinned to immutable version ids.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/knowhub/wikidex/internal/corpus"
	wikierrors "github.com/knowhub/wikidex/internal/errors"
	"github.com/knowhub/wikidex/internal/search"
	"github.com/knowhub/wikidex/internal/version"
)

// ServerName and ServerVersion identify this implementation to clients.
const (
	ServerName    = "wikidex"
	ServerVersion = "1.0.0"
)

// Server bridges MCP clients with the version resolver and search engine.
type Server struct {
	mcp      *mcp.Server
	resolver *version.Resolver
	engine   *search.HybridEngine
	dir      string
	topK     int
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTopK sets the default result-list size.
func WithTopK(topK int) Option {
	return func(s *Server) { s.topK = topK }
}

// NewServer creates an MCP server over a knowledge-base directory.
func NewServer(resolver *version.Resolver, engine *search.HybridEngine, dir string, opts ...Option) (*Server, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if engine == nil {
		return nil, errors.New("search engine is required")
	}

	s := &Server{
		resolver: resolver,
		engine:   engine,
		dir:      dir,
		topK:     search.DefaultTopK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wiki_search",
		Description: "Search the knowledge base. Combines exact pattern matching, semantic similarity and keyword overlap into one ranked list. Plain prose finds content phrased differently; regex operators (| . * etc.) switch on exact pattern matching.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wiki_resolve",
		Description: "Resolve the knowledge base to its current immutable version id, building and publishing a new version if the content is unseen. Also reports whether content changed since the previous resolve.",
	}, s.handleResolve)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wiki_changed",
		Description: "Cheaply check whether the knowledge base content changed since the last resolve, without building anything.",
	}, s.handleChanged)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wiki_versions",
		Description: "List all published knowledge base versions, newest first.",
	}, s.handleVersions)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "wiki_page",
		Description: "Read a full page and its extracted summary from the current or a pinned version.",
	}, s.handlePage)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 5))
}

// liveHandle resolves the on-disk knowledge base to a handle.
func (s *Server) liveHandle(ctx context.Context) (*version.Handle, error) {
	c, err := s.loadCorpus()
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, c)
}

// loadCorpus reads the knowledge base directory, typing read failures as
// storage errors.
func (s *Server) loadCorpus() (*corpus.Corpus, error) {
	c, err := corpus.LoadDir(s.dir)
	if err != nil {
		return nil, wikierrors.Wrap(wikierrors.ErrCodeStorageFailed, err)
	}
	return c, nil
}

// pinnedOrLive returns the handle for an explicit version id, or the live
// knowledge base when id is empty.
func (s *Server) pinnedOrLive(ctx context.Context, id string) (*version.Handle, error) {
	if id == "" {
		return s.liveHandle(ctx)
	}
	return s.resolver.ResolveHash(ctx, id)
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, wikierrors.QueryError("query parameter is required", nil)
	}

	h, err := s.pinnedOrLive(ctx, input.Version)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	topK := s.topK
	if input.TopK > 0 {
		topK = input.TopK
	}

	results, err := s.engine.Search(ctx, h, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Version: h.ID(),
		Results: make([]ResultOutput, 0, len(results)),
	}
	for _, r := range results {
		output.Results = append(output.Results, ResultOutput{
			Page:    r.DocPath,
			ChunkID: r.ChunkID,
			Score:   r.Score,
			Stream:  string(r.Stream),
			Snippet: r.Snippet,
		})
	}
	return nil, output, nil
}

func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (
	*mcp.CallToolResult,
	ResolveOutput,
	error,
) {
	c, err := s.loadCorpus()
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	changed, h, err := s.resolver.Sync(ctx, c)
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	return nil, ResolveOutput{
		Version:   h.ID(),
		Changed:   changed,
		Pages:     len(h.Documents()),
		Chunks:    len(h.Chunks()),
		Model:     h.Model(),
		CreatedAt: h.CreatedAt().Format(time.RFC3339),
	}, nil
}

func (s *Server) handleChanged(ctx context.Context, req *mcp.CallToolRequest, input ChangedInput) (
	*mcp.CallToolResult,
	ChangedOutput,
	error,
) {
	c, err := s.loadCorpus()
	if err != nil {
		return nil, ChangedOutput{}, err
	}

	output := ChangedOutput{Changed: s.resolver.HasChanged(c)}
	if current, err := s.resolver.Current(ctx); err == nil && current != nil {
		output.Version = current.ID()
	}
	return nil, output, nil
}

func (s *Server) handleVersions(ctx context.Context, req *mcp.CallToolRequest, input VersionsInput) (
	*mcp.CallToolResult,
	VersionsOutput,
	error,
) {
	infos, err := s.resolver.Versions()
	if err != nil {
		return nil, VersionsOutput{}, err
	}

	output := VersionsOutput{Versions: make([]VersionInfoOutput, 0, len(infos))}
	for _, info := range infos {
		output.Versions = append(output.Versions, VersionInfoOutput{
			Version:   info.ID,
			CreatedAt: info.CreatedAt.Format(time.RFC3339),
			Pages:     info.PageCount,
			Chunks:    info.ChunkCount,
			Model:     info.Model,
		})
	}
	return nil, output, nil
}

func (s *Server) handlePage(ctx context.Context, req *mcp.CallToolRequest, input PageInput) (
	*mcp.CallToolResult,
	PageOutput,
	error,
) {
	if input.Path == "" {
		return nil, PageOutput{}, wikierrors.QueryError("path parameter is required", nil)
	}

	h, err := s.pinnedOrLive(ctx, input.Version)
	if err != nil {
		return nil, PageOutput{}, err
	}

	doc, ok := h.Page(input.Path)
	if !ok {
		return nil, PageOutput{}, fmt.Errorf("page not found: %s", input.Path)
	}

	output := PageOutput{
		Path:    doc.Path,
		Version: h.ID(),
		Content: doc.Content,
	}
	if sum, ok := h.Summary(doc.Path); ok {
		output.Summary = sum
	}
	return nil, output, nil
}

// Serve runs the server on the given transport until ctx is cancelled.
// Only stdio is supported.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting_mcp_server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp_server_stopped",
				slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped_gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
