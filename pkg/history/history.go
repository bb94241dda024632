// Package history keeps an append-only SQLite log of dictionary mutations so
// edits can be audited after the fact. Failures here never block an edit;
// callers record best-effort.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mutations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	op TEXT NOT NULL,
	word_id TEXT NOT NULL,
	surface TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_mutations_word_id ON mutations(word_id);
`

// Record is one logged mutation.
type Record struct {
	ID      int64
	Op      string
	WordID  string
	Surface string
	At      time.Time
}

// Log wraps the SQLite connection holding the mutation table.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the mutation log at path. Use ":memory:"
// for an ephemeral log.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// Single connection so the in-memory variant shares one database.
	db.SetMaxOpenConns(1)
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply history schema: %w", err)
		}
	}
	return &Log{db: db}, nil
}

// Close releases the underlying connection.
func (l *Log) Close() error { return l.db.Close() }

// Append records one mutation.
func (l *Log) Append(op, wordID, surface string) error {
	if op == "" {
		return fmt.Errorf("op must be non-empty")
	}
	_, err := l.db.Exec(
		`INSERT INTO mutations (op, word_id, surface) VALUES (?, ?, ?)`,
		op, wordID, surface,
	)
	if err != nil {
		return fmt.Errorf("append mutation: %w", err)
	}
	return nil
}

// Recent returns up to limit mutations, newest first.
func (l *Log) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(
		`SELECT id, op, word_id, surface, created_at FROM mutations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Op, &r.WordID, &r.Surface, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ForWord returns all mutations recorded for one word id, oldest first.
func (l *Log) ForWord(wordID string) ([]Record, error) {
	rows, err := l.db.Query(
		`SELECT id, op, word_id, surface, created_at FROM mutations WHERE word_id = ? ORDER BY id ASC`,
		wordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Op, &r.WordID, &r.Surface, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
