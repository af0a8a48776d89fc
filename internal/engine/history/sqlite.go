package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultSQLitePath is ~/.go_tubesum/history.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_tubesum", "history.db")
}

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS task_history (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		subject    TEXT NOT NULL,
		status     TEXT NOT NULL,
		detail     TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`)
	return err
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_history (id, kind, subject, status, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Subject, e.Status, e.Detail, e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, kind string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, subject, status, detail, created_at FROM task_history
		 WHERE (? = '' OR kind = ?) ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		kind, kind, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Subject, &e.Status, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("history: bad timestamp %q: %w", created, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	err := ErrClosed
	s.closeOnce.Do(func() { err = s.db.Close() })
	return err
}
