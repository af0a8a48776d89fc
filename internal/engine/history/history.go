// Package history records tool invocations so callers can list recent work.
// The extraction and summary code never reads it.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status values stored with each entry.
const (
	StatusOK          = "ok"
	StatusPlaceholder = "placeholder"
	StatusError       = "error"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

var ErrClosed = errors.New("history: store closed")

// Entry is one recorded task.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry stamps a fresh id and the current time.
func NewEntry(kind, subject, status, detail string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Status:    status,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists entries. List returns newest first; an empty kind matches all.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, kind string, limit int) ([]Entry, error)
	Close() error
}

// Open returns a Postgres store when databaseURL is set, otherwise a SQLite
// store at sqlitePath (DefaultSQLitePath when empty).
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		s, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if sqlitePath == "" {
		sqlitePath = DefaultSQLitePath()
	}
	s, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}
