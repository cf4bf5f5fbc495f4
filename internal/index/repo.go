package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document kinds.
const (
	KindSource = "source"
	KindNote   = "note"
)

// Doc is one indexed source or note.
type Doc struct {
	Kind      string
	ID        string
	Title     string
	Tags      []string
	Body      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Upsert inserts or replaces a document and its FTS entry in one transaction.
func (db *DB) Upsert(d Doc) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.Tags == nil {
		d.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(d.Tags)
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO documents (kind, ref_id, title, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, ref_id) DO UPDATE SET
			title      = excluded.title,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Kind, d.ID, d.Title, string(tagsJSON), d.Body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document and its FTS entry.
func (db *DB) Delete(kind, id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, kind, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE kind = ? AND ref_id = ?`, kind, id); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// Count returns the number of indexed documents of the given kind.
func (db *DB) Count(kind string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT count(*) FROM documents WHERE kind = ?`, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
