//go:build !sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on the templates table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	// Searchable columns already live in the templates table.
	return nil
}

func ftsClear(_ *sql.Tx) {}

// Search performs a LIKE-based search (fallback when FTS5 is not
// compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT title, description, json_extract(payload, '$.image')
		FROM templates
		WHERE title LIKE ? OR description LIKE ? OR categories LIKE ?
		ORDER BY title
		LIMIT ?
	`, like, like, like, limit)
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
