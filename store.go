package spacetraveling

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPageNotFound is returned when no page is stored under a key.
var ErrPageNotFound = sql.ErrNoRows

// Store wraps a SQLite database holding generated pages, so that a build
// survives restarts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while a build writes; synchronous=NORMAL is
	// safe with WAL and avoids an fsync per page.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    key TEXT PRIMARY KEY,
    status INTEGER NOT NULL,
    content_type TEXT NOT NULL,
    body BLOB NOT NULL,
    generated_at INTEGER NOT NULL,
    revalidate_seconds INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
INSERT OR IGNORE INTO meta (name, value) VALUES ('epoch', 0);
`)
	return err
}

// SavePage upserts a page.
func (s *Store) SavePage(p Page) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO pages (key, status, content_type, body, generated_at, revalidate_seconds) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Key, p.Status, p.ContentType, p.Body, p.GeneratedAt.UnixNano(), int64(p.Revalidate/time.Second))
	return err
}

// GetPage returns the page stored under key.
func (s *Store) GetPage(key string) (Page, error) {
	row := s.db.QueryRow(`SELECT key, status, content_type, body, generated_at, revalidate_seconds FROM pages WHERE key = ?`, key)
	return scanPage(row)
}

// ListPages returns every stored page ordered by key.
func (s *Store) ListPages() ([]Page, error) {
	rows, err := s.db.Query(`SELECT key, status, content_type, body, generated_at, revalidate_seconds FROM pages ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes the page stored under key and bumps the epoch.
func (s *Store) DeletePage(key string) error {
	return s.deleteAndBump(`DELETE FROM pages WHERE key = ?`, key)
}

// DeleteAllPages empties the page table and bumps the epoch.
func (s *Store) DeleteAllPages() error {
	return s.deleteAndBump(`DELETE FROM pages`)
}

// Epoch is a counter bumped by every deletion, so that processes sharing the
// database notice pages they still hold in memory are gone.
func (s *Store) Epoch() (int64, error) {
	var epoch int64
	err := s.db.QueryRow(`SELECT value FROM meta WHERE name = 'epoch'`).Scan(&epoch)
	return epoch, err
}

func (s *Store) deleteAndBump(query string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE meta SET value = value + 1 WHERE name = 'epoch'`); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (Page, error) {
	var p Page
	var generatedAt, revalidate int64
	if err := row.Scan(&p.Key, &p.Status, &p.ContentType, &p.Body, &generatedAt, &revalidate); err != nil {
		return Page{}, err
	}
	p.GeneratedAt = time.Unix(0, generatedAt)
	p.Revalidate = time.Duration(revalidate) * time.Second
	return p, nil
}
