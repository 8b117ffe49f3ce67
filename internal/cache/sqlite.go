// File path: internal/cache/sqlite.go
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteBusyTimeout = 5 * time.Second

// SQLiteBackend persists the blob as a single row in a SQLite database. It
// shares the Backend contract with FileBackend; the row is replaced whole on
// every save, matching the one-blob persistence model.
type SQLiteBackend struct {
	db *sqlx.DB
}

// NewSQLiteBackend opens (and migrates) the SQLite database at the provided
// path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	busy := int(sqliteBusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteBusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS cache_blob (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		blob BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load() ([]byte, error) {
	var blob []byte
	err := b.db.Get(&blob, `SELECT blob FROM cache_blob WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cache blob: %w", err)
	}
	return blob, nil
}

func (b *SQLiteBackend) Save(blob []byte) error {
	_, err := b.db.Exec(
		`INSERT INTO cache_blob (id, blob, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		blob, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save cache blob: %w", err)
	}
	return nil
}

// Close releases the underlying database resources.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
