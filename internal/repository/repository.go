package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// NewPool opens a PostgreSQL pool and verifies it with a ping.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// OpenSQLite opens a modernc SQLite database at path. A single connection is
// used so that ":memory:" databases are shared by every caller and writers
// never contend for the file lock.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDatabaseURL)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite %s: %w", path, err)
	}
	return db, nil
}

// Open maps a DATABASE_URL onto a SubmissionRepository.
//
//	postgres://… or postgresql://…  PostgreSQL via pgxpool
//	sqlite:<path> or a bare path     SQLite via modernc
//	"" or "none"                     no repository (nil, nil)
//
// The returned close function is never nil.
func Open(ctx context.Context, databaseURL string) (SubmissionRepository, func(), error) {
	noop := func() {}
	url := strings.TrimSpace(databaseURL)

	switch {
	case url == "" || url == "none":
		return nil, noop, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pool, err := NewPool(ctx, url)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPgSubmissionRepository(pool), pool.Close, nil
	case strings.Contains(url, "://"):
		return nil, noop, fmt.Errorf("%w: %s", ErrUnsupportedDatabaseURL, url)
	default:
		db, err := OpenSQLite(strings.TrimPrefix(url, "sqlite:"))
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteSubmissionRepository(db), func() { _ = db.Close() }, nil
	}
}
