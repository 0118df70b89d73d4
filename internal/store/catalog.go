package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	wikierrors "github.com/knowhub/wikidex/internal/errors"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS versions (
	hash        TEXT PRIMARY KEY,
	dir         TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	page_count  INTEGER NOT NULL,
	chunk_count INTEGER NOT NULL,
	model       TEXT NOT NULL,
	dims        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS current (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	hash TEXT NOT NULL
);
`

// catalog is the SQLite index over published versions. WAL mode lets
// concurrent readers coexist with the single writer.
type catalog struct {
	db *sql.DB
}

func openCatalog(path string) (*catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "open catalog", err)
	}

	// Single writer prevents SQLITE_BUSY churn under concurrent publishes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// modernc.org/sqlite ignores DSN journal params; set pragmas explicitly.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "set pragma", err)
		}
	}

	if _, err := db.Exec(catalogSchema); err != nil {
		_ = db.Close()
		return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "create schema", err)
	}

	return &catalog{db: db}, nil
}

func (c *catalog) close() error {
	return c.db.Close()
}

// insert registers a published version and moves the current pointer to it.
// Both writes share a transaction so a crash cannot leave the pointer on a
// hash with no row.
func (c *catalog) insert(info Info) error {
	tx, err := c.db.Begin()
	if err != nil {
		return wikierrors.New(wikierrors.ErrCodeCatalogFailed, "begin insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT OR IGNORE INTO versions (hash, dir, created_at, page_count, chunk_count, model, dims)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.Hash, info.Dir, info.CreatedAt.UTC().Format(time.RFC3339Nano),
		info.PageCount, info.ChunkCount, info.Model, info.Dimensions,
	)
	if err != nil {
		return wikierrors.New(wikierrors.ErrCodeCatalogFailed, "insert version", err)
	}

	_, err = tx.Exec(
		`INSERT INTO current (id, hash) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET hash = excluded.hash`,
		info.Hash,
	)
	if err != nil {
		return wikierrors.New(wikierrors.ErrCodeCatalogFailed, "update current pointer", err)
	}

	if err := tx.Commit(); err != nil {
		return wikierrors.New(wikierrors.ErrCodeCatalogFailed, "commit insert", err)
	}
	return nil
}

func (c *catalog) get(hash string) (Info, bool, error) {
	row := c.db.QueryRow(
		`SELECT hash, dir, created_at, page_count, chunk_count, model, dims
		 FROM versions WHERE hash = ?`, hash)

	info, err := scanInfo(row)
	if err == sql.ErrNoRows {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "query version", err)
	}
	return info, true, nil
}

func (c *catalog) has(hash string) (bool, error) {
	_, ok, err := c.get(hash)
	return ok, err
}

// list returns all published versions, newest first.
func (c *catalog) list() ([]Info, error) {
	rows, err := c.db.Query(
		`SELECT hash, dir, created_at, page_count, chunk_count, model, dims
		 FROM versions ORDER BY created_at DESC, hash`)
	if err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "list versions", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "scan version row", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "iterate versions", err)
	}
	return infos, nil
}

// current returns the hash of the most recently published version.
func (c *catalog) current() (string, bool, error) {
	var hash string
	err := c.db.QueryRow(`SELECT hash FROM current WHERE id = 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, wikierrors.New(wikierrors.ErrCodeCatalogFailed, "query current pointer", err)
	}
	return hash, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfo(row rowScanner) (Info, error) {
	var info Info
	var createdAt string
	if err := row.Scan(&info.Hash, &info.Dir, &createdAt,
		&info.PageCount, &info.ChunkCount, &info.Model, &info.Dimensions); err != nil {
		return Info{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Info{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	info.CreatedAt = ts
	info.ID = VersionID(info.Hash)
	return info, nil
}
