package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/norland/catena/internal/apperr"
	"github.com/norland/catena/internal/compare"
	"github.com/norland/catena/internal/models"
	"github.com/norland/catena/internal/score"
)

// SearchResult is one search hit.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ReplaceAll swaps the stored catalog for the given merge output
// within a single transaction.
func (db *DB) ReplaceAll(templates []models.Template) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM templates`); err != nil {
		return fmt.Errorf("catalog: clear templates: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`
		INSERT INTO templates (title, payload, description, categories, architecture, quality, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(title) DO UPDATE SET
			payload      = excluded.payload,
			description  = excluded.description,
			categories   = excluded.categories,
			architecture = excluded.architecture,
			quality      = excluded.quality,
			updated_at   = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range templates {
		t := &templates[i]
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("catalog: encode %q: %w", t.Title, err)
		}
		categoriesJSON, _ := json.Marshal(t.Categories)
		if _, err := stmt.Exec(
			t.Title, string(payload), t.Description, string(categoriesJSON),
			compare.DetectArchitecture(t), score.Score(t),
		); err != nil {
			return fmt.Errorf("catalog: insert %q: %w", t.Title, err)
		}
		if err := ftsUpsert(tx, t.Title, t.Description, strings.Join(t.Categories, " ")); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns stored templates ordered by title, with optional
// category filtering and pagination.
func (db *DB) List(limit, offset int, category string) ([]models.Template, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if category != "" {
		// Categories are stored as a JSON array of strings.
		where = `WHERE categories LIKE ?`
		args = append(args, `%"`+category+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM templates `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	query := `SELECT payload FROM templates ` + where + ` ORDER BY title LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, 0, err
		}
		var t models.Template
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, 0, fmt.Errorf("catalog: decode payload: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Get returns the stored template with the exact title.
func (db *DB) Get(title string) (*models.Template, error) {
	var payload string
	err := db.conn.QueryRow(`SELECT payload FROM templates WHERE title = ?`, title).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %q: %w", title, err)
	}
	var t models.Template
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, fmt.Errorf("catalog: decode payload: %w", err)
	}
	return &t, nil
}

// Titles returns every stored template title.
func (db *DB) Titles() ([]string, error) {
	rows, err := db.conn.Query(`SELECT title FROM templates ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("catalog: titles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Categories returns the distinct categories across the catalog.
func (db *DB) Categories() ([]string, error) {
	rows, err := db.conn.Query(`SELECT categories FROM templates`)
	if err != nil {
		return nil, fmt.Errorf("catalog: categories: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cats []string
		if err := json.Unmarshal([]byte(raw), &cats); err != nil {
			continue
		}
		for _, c := range cats {
			seen[c] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// UpsertManual stores a manually entered template. Manual records join
// every subsequent merge tagged as manual entries.
func (db *DB) UpsertManual(t *models.Template) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("catalog: encode manual %q: %w", t.Title, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO manual_templates (title, payload)
		VALUES (?, ?)
		ON CONFLICT(title) DO UPDATE SET payload = excluded.payload
	`, t.Title, string(payload))
	if err != nil {
		return fmt.Errorf("catalog: upsert manual %q: %w", t.Title, err)
	}
	return nil
}

// DeleteManual removes a manually entered template.
func (db *DB) DeleteManual(title string) error {
	res, err := db.conn.Exec(`DELETE FROM manual_templates WHERE title = ?`, title)
	if err != nil {
		return fmt.Errorf("catalog: delete manual %q: %w", title, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListManual returns every manually entered template in insertion order.
func (db *DB) ListManual() ([]models.Template, error) {
	rows, err := db.conn.Query(`SELECT payload FROM manual_templates ORDER BY created_at, title`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list manual: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t models.Template
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("catalog: decode manual payload: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
