//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS templates_fts USING fts5(
			title,
			description,
			categories,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, title, description, categories string) error {
	_, _ = tx.Exec(`DELETE FROM templates_fts WHERE title = ?`, title)
	_, err := tx.Exec(`INSERT INTO templates_fts (title, description, categories) VALUES (?, ?, ?)`,
		title, description, categories)
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM templates_fts`)
}

// Search performs an FTS5 full-text search over titles, descriptions,
// and categories.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT t.title, t.description, json_extract(t.payload, '$.image')
		FROM templates_fts f
		JOIN templates t ON t.title = f.title
		WHERE templates_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var image sql.NullString
		if err := rows.Scan(&r.Title, &r.Description, &image); err != nil {
			return nil, err
		}
		r.Image = image.String
		out = append(out, r)
	}
	return out, rows.Err()
}
