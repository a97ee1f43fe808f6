// Package catalog provides SQLite-backed persistence for the merged
// template catalog, with optional FTS5 full-text search.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/norland/catena/internal/models"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS templates (
	title        TEXT PRIMARY KEY,
	payload      TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	categories   TEXT NOT NULL DEFAULT '[]',
	architecture TEXT NOT NULL DEFAULT '',
	quality      INTEGER NOT NULL DEFAULT 0,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS manual_templates (
	title      TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_templates_architecture ON templates(architecture);
`

// Store defines the catalog persistence operations. Consumers should
// depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type Store interface {
	ReplaceAll(templates []models.Template) error
	List(limit, offset int, category string) ([]models.Template, int, error)
	Get(title string) (*models.Template, error)
	Titles() ([]string, error)
	Categories() ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	UpsertManual(t *models.Template) error
	DeleteManual(title string) error
	ListManual() ([]models.Template, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
