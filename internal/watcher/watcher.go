// Package watcher keeps a resolved version in step with a knowledge-base
// directory on disk. File events are debounced, the corpus is reloaded, and
// a change event is emitted whenever the content hash moves.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/knowhub/wikidex/internal/corpus"
	wikierrors "github.com/knowhub/wikidex/internal/errors"
	"github.com/knowhub/wikidex/internal/version"
)

// DefaultDebounce is the event-coalescing window.
const DefaultDebounce = 500 * time.Millisecond

// Operation is a file system operation type.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns a human-readable operation name.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one coalesced file system event.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// ChangeEvent reports that the knowledge base moved to a new version.
type ChangeEvent struct {
	OldID  string
	NewID  string
	Handle *version.Handle
	At     time.Time
}

// CorpusWatcher watches one knowledge-base directory and republishes
// through the resolver when its content changes.
type CorpusWatcher struct {
	dir      string
	resolver *version.Resolver
	debounce time.Duration
	logger   *slog.Logger

	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	changes   chan ChangeEvent
	errs      chan error

	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a CorpusWatcher.
type Option func(*CorpusWatcher)

// WithDebounce sets the event-coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *CorpusWatcher) { w.debounce = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *CorpusWatcher) { w.logger = logger }
}

// New creates a watcher over dir, resolving through r.
func New(dir string, r *version.Resolver, opts ...Option) *CorpusWatcher {
	w := &CorpusWatcher{
		dir:      dir,
		resolver: r,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		changes:  make(chan ChangeEvent, 10),
		errs:     make(chan error, 10),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start performs an initial sync (which never reports a change) and begins
// watching. The watcher runs until Stop is called or ctx is cancelled.
func (w *CorpusWatcher) Start(ctx context.Context) error {
	if err := w.resync(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return err
	}
	w.fsw = fsw
	w.debouncer = NewDebouncer(w.debounce)

	go w.loop(ctx)
	w.logger.Info("watching_knowledge_base",
		slog.String("dir", w.dir),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Changes returns the channel of version change events.
// The channel is closed when the watcher stops.
func (w *CorpusWatcher) Changes() <-chan ChangeEvent {
	return w.changes
}

// Errors returns the channel of non-fatal watcher errors.
func (w *CorpusWatcher) Errors() <-chan error {
	return w.errs
}

// Stop stops the watcher and closes its channels.
// Safe to call multiple times.
func (w *CorpusWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *CorpusWatcher) loop(ctx context.Context) {
	defer func() {
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		w.debouncer.Stop()
		close(w.changes)
		close(w.errs)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if fe, relevant := translate(ev); relevant {
				w.debouncer.Add(fe)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(ctx, err)

		case batch := <-w.debouncer.Output():
			w.logger.Debug("knowledge_base_events",
				slog.Int("batch_size", len(batch)))
			if err := w.resync(ctx); err != nil {
				w.reportError(ctx, err)
			}
		}
	}
}

// resync reloads the corpus and resolves it, emitting a change event when
// the version moved.
func (w *CorpusWatcher) resync(ctx context.Context) error {
	c, err := corpus.LoadDir(w.dir)
	if err != nil {
		return err
	}

	oldH, err := w.resolver.Current(ctx)
	if err != nil {
		return err
	}

	changed, h, err := w.resolver.Sync(ctx, c)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	event := ChangeEvent{
		NewID:  h.ID(),
		Handle: h,
		At:     time.Now(),
	}
	if oldH != nil {
		event.OldID = oldH.ID()
	}

	select {
	case w.changes <- event:
	default:
		w.logger.Warn("change_channel_full",
			slog.String("new_version", event.NewID))
	}
	return nil
}

// reportError surfaces a resync failure. Fatal errors (a publish that must
// not register) log at error level; retryable ones stay at warn since the
// next debounced batch retries the sync anyway.
func (w *CorpusWatcher) reportError(ctx context.Context, err error) {
	level := slog.LevelWarn
	if wikierrors.IsFatal(err) {
		level = slog.LevelError
	}
	w.logger.Log(ctx, level, "resync_failed",
		slog.String("error", err.Error()),
		slog.Bool("retryable", wikierrors.IsRetryable(err)))

	select {
	case w.errs <- err:
	default:
	}
}

// translate maps an fsnotify event to a FileEvent, filtering out anything
// that is not a markdown page in the watched directory.
func translate(ev fsnotify.Event) (FileEvent, bool) {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
		return FileEvent{}, false
	}

	fe := FileEvent{Path: ev.Name, Timestamp: time.Now()}
	switch {
	case ev.Has(fsnotify.Create):
		fe.Operation = OpCreate
	case ev.Has(fsnotify.Write):
		fe.Operation = OpModify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		fe.Operation = OpDelete
	default:
		return FileEvent{}, false
	}
	return fe, true
}
