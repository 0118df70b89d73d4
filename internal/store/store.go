package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/knowhub/wikidex/internal/chunk"
	"github.com/knowhub/wikidex/internal/corpus"
	wikierrors "github.com/knowhub/wikidex/internal/errors"
)

const (
	manifestFile   = "manifest.json"
	matrixFileName = "embeddings.gob"
	summariesFile  = "summaries.json"
	pagesDir       = "pages"
	locksDir       = ".locks"
	tmpPrefix      = ".tmp-"
	catalogFile    = "catalog.db"
)

// Store manages the version directory tree and its catalog.
type Store struct {
	baseDir string
	catalog *catalog
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New opens (or creates) a version store rooted at baseDir. Leftover temp
// directories from interrupted builds are swept on open; they are garbage
// by construction since the catalog row is written only after the rename.
func New(baseDir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, wikierrors.StorageError("create store directory", err)
	}

	s := &Store{
		baseDir: baseDir,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cat, err := openCatalog(filepath.Join(baseDir, catalogFile))
	if err != nil {
		return nil, err
	}
	s.catalog = cat

	s.sweepTemp()
	return s, nil
}

// Close releases the catalog connection.
func (s *Store) Close() error {
	return s.catalog.close()
}

// BaseDir returns the store root.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Has reports whether the version for hash is published.
func (s *Store) Has(hash string) (bool, error) {
	return s.catalog.has(hash)
}

// Versions lists all published versions, newest first.
func (s *Store) Versions() ([]Info, error) {
	return s.catalog.list()
}

// Current returns the hash of the most recently published version.
func (s *Store) Current() (string, bool, error) {
	return s.catalog.current()
}

// Publish writes the version to disk and registers it in the catalog.
// The write is atomic: artifacts land in a temp directory first, the rename
// to the final name happens in one step, and the catalog row follows the
// rename. Publishing an already-published hash is a no-op.
//
// A cross-process file lock per hash serializes builders racing on the same
// content; the loser finds the version published and returns early.
func (s *Store) Publish(v *Version) error {
	id := VersionID(v.Hash)

	lock, err := s.lockVersion(id)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	if ok, err := s.catalog.has(v.Hash); err != nil {
		return err
	} else if ok {
		s.logger.Debug("version_already_published", slog.String("version", id))
		return nil
	}

	finalDir := filepath.Join(s.baseDir, id)
	tmpDir, err := os.MkdirTemp(s.baseDir, tmpPrefix)
	if err != nil {
		return wikierrors.PublishError("create temp directory", err)
	}

	if err := s.writeArtifacts(tmpDir, v); err != nil {
		_ = os.RemoveAll(tmpDir)
		return err
	}

	if err := os.Rename(tmpDir, finalDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return wikierrors.PublishError("rename version directory", err).
			WithDetail("version", id)
	}

	info := Info{
		Hash:       v.Hash,
		ID:         id,
		Dir:        finalDir,
		CreatedAt:  v.CreatedAt,
		PageCount:  len(v.Documents),
		ChunkCount: len(v.Chunks),
		Model:      v.Model,
		Dimensions: v.Dimensions,
	}
	if err := s.catalog.insert(info); err != nil {
		// The directory is complete but unregistered; a later publish of the
		// same hash finds it via the rename failing and recovers through the
		// catalog check above, so remove it to keep the tree consistent.
		_ = os.RemoveAll(finalDir)
		return err
	}

	s.logger.Info("version_published",
		slog.String("version", id),
		slog.Int("pages", info.PageCount),
		slog.Int("chunks", info.ChunkCount),
		slog.Bool("embedded", v.Matrix != nil))
	return nil
}

// Load materializes a published version. A hash missing from the catalog
// yields ErrCodeVersionNotFound. A readable version whose embedding matrix
// is missing or damaged is returned with a nil matrix alongside an
// ErrCodeMatrixCorrupt error, so callers can re-embed without rebuilding.
func (s *Store) Load(hash string) (*Version, error) {
	info, ok, err := s.catalog.get(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, wikierrors.New(wikierrors.ErrCodeVersionNotFound, "version not published", nil).
			WithDetail("version", VersionID(hash))
	}

	var m manifest
	if err := readJSON(filepath.Join(info.Dir, manifestFile), &m); err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeVersionCorrupt, "read manifest", err).
			WithDetail("version", info.ID)
	}

	docs := make([]corpus.Document, 0, len(m.Documents))
	pages := make(map[string]string, len(m.Documents))
	for _, p := range m.Documents {
		raw, err := os.ReadFile(filepath.Join(info.Dir, pagesDir, p.File))
		if err != nil {
			return nil, wikierrors.New(wikierrors.ErrCodeVersionCorrupt, "read page", err).
				WithDetail("version", info.ID).
				WithDetail("page", p.Path)
		}
		docs = append(docs, corpus.Document{Path: p.Path, Content: string(raw)})
		pages[p.Path] = string(raw)
	}

	chunks := make([]chunk.Chunk, 0, len(m.Chunks))
	for _, mc := range m.Chunks {
		body, ok := pages[mc.DocPath]
		if !ok || mc.Start < 0 || mc.End > len(body) || mc.Start > mc.End {
			return nil, wikierrors.New(wikierrors.ErrCodeVersionCorrupt, "chunk boundary out of range", nil).
				WithDetail("version", info.ID).
				WithDetail("chunk", mc.ID)
		}
		chunks = append(chunks, chunk.Chunk{
			ID:      mc.ID,
			DocPath: mc.DocPath,
			Content: body[mc.Start:mc.End],
			Start:   mc.Start,
			End:     mc.End,
		})
	}

	v := &Version{
		Hash:       m.Hash,
		CreatedAt:  m.CreatedAt,
		Model:      m.Model,
		Dimensions: m.Dimensions,
		Documents:  docs,
		Chunks:     chunks,
	}

	if summaries, err := loadSummaries(filepath.Join(info.Dir, summariesFile)); err == nil {
		v.Summaries = summaries
	}

	if !m.HasMatrix {
		return v, nil
	}
	matrix, err := loadMatrix(filepath.Join(info.Dir, matrixFileName), len(chunks), m.Dimensions)
	if err != nil {
		if wikierrors.GetCode(err) == wikierrors.ErrCodeMatrixCorrupt {
			s.logger.Warn("embedding_matrix_corrupt",
				slog.String("version", info.ID),
				slog.String("error", err.Error()))
			return v, err
		}
		return nil, err
	}
	v.Matrix = matrix
	return v, nil
}

// WriteMatrix replaces the embedding matrix of a published version. Used to
// repair a corrupt matrix without rebuilding chunks.
func (s *Store) WriteMatrix(hash string, matrix [][]float32, dims int) error {
	info, ok, err := s.catalog.get(hash)
	if err != nil {
		return err
	}
	if !ok {
		return wikierrors.New(wikierrors.ErrCodeVersionNotFound, "version not published", nil).
			WithDetail("version", VersionID(hash))
	}
	return saveMatrix(filepath.Join(info.Dir, matrixFileName), matrix, dims)
}

// lockVersion takes the cross-process build lock for a version id.
func (s *Store) lockVersion(id string) (*flock.Flock, error) {
	dir := filepath.Join(s.baseDir, locksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wikierrors.StorageError("create lock directory", err)
	}
	lock := flock.New(filepath.Join(dir, id+".lock"))
	if err := lock.Lock(); err != nil {
		return nil, wikierrors.StorageError("acquire build lock", err)
	}
	return lock, nil
}

// writeArtifacts lays out a version's files inside dir.
func (s *Store) writeArtifacts(dir string, v *Version) error {
	if err := os.MkdirAll(filepath.Join(dir, pagesDir), 0o755); err != nil {
		return wikierrors.PublishError("create pages directory", err)
	}

	m := manifest{
		Hash:       v.Hash,
		CreatedAt:  v.CreatedAt,
		Model:      v.Model,
		Dimensions: v.Dimensions,
		HasMatrix:  v.Matrix != nil,
		Documents:  make([]manifestPage, 0, len(v.Documents)),
		Chunks:     make([]manifestChunk, 0, len(v.Chunks)),
	}

	for _, doc := range v.Documents {
		file := pageFileName(doc.Path)
		path := filepath.Join(dir, pagesDir, file)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return wikierrors.PublishError("write page", err).WithDetail("page", doc.Path)
		}
		m.Documents = append(m.Documents, manifestPage{Path: doc.Path, File: file})
	}

	for _, c := range v.Chunks {
		m.Chunks = append(m.Chunks, manifestChunk{
			ID:      c.ID,
			DocPath: c.DocPath,
			Start:   c.Start,
			End:     c.End,
		})
	}

	if err := writeJSON(filepath.Join(dir, manifestFile), m); err != nil {
		return wikierrors.PublishError("write manifest", err)
	}

	if v.Matrix != nil {
		if err := saveMatrix(filepath.Join(dir, matrixFileName), v.Matrix, v.Dimensions); err != nil {
			return err
		}
	}

	if len(v.Summaries) > 0 {
		if err := writeJSON(filepath.Join(dir, summariesFile), v.Summaries); err != nil {
			return wikierrors.PublishError("write summaries", err)
		}
	}
	return nil
}

// sweepTemp removes temp directories left by interrupted builds.
func (s *Store) sweepTemp() {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), tmpPrefix) {
			path := filepath.Join(s.baseDir, e.Name())
			if err := os.RemoveAll(path); err == nil {
				s.logger.Debug("swept_interrupted_build", slog.String("dir", e.Name()))
			}
		}
	}
}

// pageFileName flattens a document path into a single file name. Path
// separators become double underscores, and a short digest of the original
// path is appended so distinct paths can never flatten to the same file
// (e.g. "a/b.md" and "a__b.md"). The manifest maps paths to file names, so
// readers never recompute this.
func pageFileName(path string) string {
	name := strings.ReplaceAll(path, "/", "__")
	name = strings.ReplaceAll(name, string(filepath.Separator), "__")
	name = strings.TrimSuffix(name, ".md")
	digest := sha256.Sum256([]byte(path))
	return name + "-" + hex.EncodeToString(digest[:4]) + ".md"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func loadSummaries(path string) (map[string]string, error) {
	var summaries map[string]string
	if err := readJSON(path, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
