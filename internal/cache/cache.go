package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/viyanta/viyanta-web-sub000/internal/collab"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    company      TEXT NOT NULL,
    file         TEXT NOT NULL,
    split        TEXT NOT NULL,
    content_type TEXT NOT NULL,
    body         BLOB NOT NULL,
    fetched_at   INTEGER NOT NULL, -- UnixNano
    PRIMARY KEY (company, file, split)
);

CREATE TABLE IF NOT EXISTS edits (
    form       TEXT NOT NULL,
    record     INTEGER NOT NULL,
    edit_key   TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (form, record, edit_key)
);

CREATE INDEX IF NOT EXISTS idx_documents_fetched ON documents(fetched_at);
`

// Cache stores fetched payloads and local cell edits in SQLite
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the cache database at path
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Debug("Opened cache", "path", path)
	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a cached document no older than maxAge. A zero maxAge accepts
// any age.
func (c *Cache) Get(ctx context.Context, ref collab.Ref, maxAge time.Duration) (collab.Document, bool, error) {
	var (
		doc       = collab.Document{Ref: ref}
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT content_type, body, fetched_at FROM documents WHERE company = ? AND file = ? AND split = ?`,
		ref.Company, ref.File, ref.Split,
	).Scan(&doc.ContentType, &doc.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return collab.Document{}, false, nil
	}
	if err != nil {
		return collab.Document{}, false, fmt.Errorf("failed to read %s: %w", ref, err)
	}

	if maxAge > 0 && c.now().Sub(time.Unix(0, fetchedAt)) > maxAge {
		return collab.Document{}, false, nil
	}
	return doc, true, nil
}

// Put stores a document, replacing any earlier copy
func (c *Cache) Put(ctx context.Context, doc collab.Document) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO documents (company, file, split, content_type, body, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(company, file, split) DO UPDATE SET
		     content_type = excluded.content_type,
		     body = excluded.body,
		     fetched_at = excluded.fetched_at`,
		doc.Ref.Company, doc.Ref.File, doc.Ref.Split, doc.ContentType, doc.Body, c.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", doc.Ref, err)
	}
	return nil
}

// Prune deletes documents older than maxAge and returns how many were removed
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := c.now().Add(-maxAge).UnixNano()
	res, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune documents: %w", err)
	}
	return res.RowsAffected()
}

// SaveEdits stores cell edits of one form record, replacing earlier values
func (c *Cache) SaveEdits(ctx context.Context, edits map[tablemodel.EditKey]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edits (form, record, edit_key, value, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(form, record, edit_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := c.now().UnixNano()
	for key, value := range edits {
		if _, err := stmt.ExecContext(ctx, key.Form, key.Record, key.String(), value, now); err != nil {
			return fmt.Errorf("failed to store edit %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// LoadEdits returns the stored edits of one form record
func (c *Cache) LoadEdits(ctx context.Context, form string, record int) (map[tablemodel.EditKey]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT edit_key, value FROM edits WHERE form = ? AND record = ?`, form, record)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	edits := make(map[tablemodel.EditKey]string)
	for rows.Next() {
		var raw, value string
		if err := rows.Scan(&raw, &value); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		key, err := tablemodel.ParseEditKey(raw)
		if err != nil {
			slog.Warn("Skipping malformed edit key", "key", raw, "error", err)
			continue
		}
		edits[key] = value
	}
	return edits, rows.Err()
}

// Fetcher retrieves documents by reference
type Fetcher interface {
	FetchDocument(ctx context.Context, ref collab.Ref) (collab.Document, error)
}

// CachedFetcher serves documents from the cache and falls back to upstream
type CachedFetcher struct {
	Cache    *Cache
	Upstream Fetcher
	MaxAge   time.Duration
}

// FetchDocument returns a fresh cached copy or fetches and stores a new one.
// Upstream errors are returned unchanged.
func (f *CachedFetcher) FetchDocument(ctx context.Context, ref collab.Ref) (collab.Document, error) {
	doc, ok, err := f.Cache.Get(ctx, ref, f.MaxAge)
	if err != nil {
		slog.Warn("Cache read failed", "ref", ref.String(), "error", err)
	}
	if ok {
		slog.Debug("Cache hit", "ref", ref.String())
		return doc, nil
	}

	doc, err = f.Upstream.FetchDocument(ctx, ref)
	if err != nil {
		return collab.Document{}, err
	}

	if err := f.Cache.Put(ctx, doc); err != nil {
		slog.Warn("Cache write failed", "ref", ref.String(), "error", err)
	}
	return doc, nil
}
