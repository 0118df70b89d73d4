package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	mcpserver "github.com/knowhub/wikidex/internal/mcp"
	"github.com/knowhub/wikidex/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var dir string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve exposes the knowledge base to MCP clients over stdio. The
server indexes on demand: the first tool call builds a version if the
content has never been seen before.

With --watch, the server also watches the directory and rebuilds the
version when pages change on disk.

stdout carries JSON-RPC exclusively; diagnostics go to the debug log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd, dir, watch)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Knowledge base directory")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild versions when pages change on disk")

	return cmd
}

func runServe(ctx context.Context, _ *cobra.Command, dir string, watch bool) error {
	comp, err := newComponents()
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(comp.resolver, comp.engine, dir,
		mcpserver.WithLogger(slog.Default()),
		mcpserver.WithTopK(comp.cfg.Search.TopK),
	)
	if err != nil {
		return err
	}

	if watch {
		w := watcher.New(dir, comp.resolver,
			watcher.WithDebounce(comp.cfg.Watch.Debounce),
			watcher.WithLogger(slog.Default()),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		go drainWatcher(w)
	}

	return srv.Serve(ctx, comp.cfg.Server.Transport)
}

// drainWatcher logs change and error events so the channels never fill.
// MCP clients observe changes through the wiki_changed tool.
func drainWatcher(w *watcher.CorpusWatcher) {
	for {
		select {
		case ev, ok := <-w.Changes():
			if !ok {
				return
			}
			slog.Info("knowledge_base_rebuilt",
				slog.String("old_version", ev.OldID),
				slog.String("new_version", ev.NewID))
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			slog.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}
