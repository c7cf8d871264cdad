package endnotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("endnotes: document not found")

// Store keeps documents in SQLite. It implements Source, so a site can be
// built from the database instead of a directory.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while an import writes; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
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
CREATE TABLE IF NOT EXISTS documents (
    key TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
`)
	return err
}

const documentColumns = `key, slug, title, date, tags, summary, content, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var d Document
	var tags string
	var published int
	if err := row.Scan(&d.Key, &d.Slug, &d.Title, &d.Date, &tags, &d.Summary, &d.Content, &published); err != nil {
		return Document{}, err
	}
	d.Tags = ParseTags(tags)
	d.Published = published == 1
	return d, nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListDocuments returns published documents ordered by date descending.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	return s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents WHERE published = 1 ORDER BY date DESC, slug`)
}

// ListAllDocuments returns every document, drafts included.
func (s *Store) ListAllDocuments(ctx context.Context) ([]Document, error) {
	return s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY date DESC, slug`)
}

// Documents implements Source. Drafts are returned too; the builder decides
// whether to render them.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	return s.ListAllDocuments(ctx)
}

// GetDocument returns a document by key regardless of published status.
func (s *Store) GetDocument(key string) (Document, error) {
	d, err := scanDocument(s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

// SaveDocument upserts a document. Tags are normalized to lowercase.
func (s *Store) SaveDocument(d Document) error {
	if d.Key == "" {
		return errors.New("endnotes: document key is required")
	}
	tagString := "," + strings.Join(normalizeTags(d.Tags), ",") + ","
	published := 0
	if d.Published {
		published = 1
	}
	// Upsert on key only: a slug already used by another key must fail
	// instead of replacing that document.
	_, err := s.db.Exec(`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    slug = excluded.slug,
    title = excluded.title,
    date = excluded.date,
    tags = excluded.tags,
    summary = excluded.summary,
    content = excluded.content,
    published = excluded.published`,
		d.Key, d.Slug, d.Title, d.Date, tagString, d.Summary, d.Content, published)
	if err != nil {
		return fmt.Errorf("endnotes: save %s: %w", d.Key, err)
	}
	return nil
}

// DeleteDocument removes a document by key.
func (s *Store) DeleteDocument(key string) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE key = ?`, key)
	return err
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
