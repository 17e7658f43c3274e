package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS quandl_cache (
	key       TEXT PRIMARY KEY,
	url       TEXT NOT NULL,
	body      BLOB NOT NULL,
	stored_at INTEGER NOT NULL
)`

// SQLite stores documents in a single table of an SQLite database.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// OpenSQLite opens (and creates) the database file at path.
func OpenSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite cache: path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite cache: open: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite cache: create table: %w", err)
	}
	return &SQLite{db: db, ttl: ttl}, nil
}

func (s *SQLite) Get(ctx context.Context, url string) ([]byte, bool, error) {
	var (
		body     []byte
		storedAt int64
	)
	row := s.db.QueryRowContext(ctx, `SELECT body, stored_at FROM quandl_cache WHERE key = ?`, Key(url))
	if err := row.Scan(&body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite cache: get: %w", err)
	}
	if expired(time.UnixMilli(storedAt), nowFunc(s.Clock), s.ttl) {
		return nil, false, nil
	}
	return body, true, nil
}

func (s *SQLite) Set(ctx context.Context, url string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quandl_cache (key, url, body, stored_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (key)
         DO UPDATE SET url=excluded.url, body=excluded.body, stored_at=excluded.stored_at`,
		Key(url), url, data, nowFunc(s.Clock).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite cache: set: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
