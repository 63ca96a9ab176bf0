package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const createRateCounters = `CREATE TABLE IF NOT EXISTS rate_counters (
	counter_key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLStore keeps keys in a SQLite table so counters survive restarts.
// expires_at is stored as Unix milliseconds.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore wraps db. Call EnsureSchema before first use.
func NewSQLStore(db *sql.DB, now func() time.Time) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: db, now: now}
}

var (
	_ Store       = (*SQLStore)(nil)
	_ Incrementer = (*SQLStore)(nil)
	_ Sweeper     = (*SQLStore)(nil)
)

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createRateCounters)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM rate_counters WHERE counter_key = ? AND expires_at > ?`,
		key, s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rate_counters (counter_key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(counter_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.now().Add(ttl).UnixMilli(),
	)
	return err
}

// Incr increments key in a single upsert, so concurrent callers never read
// the same pre-increment value.
func (s *SQLStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := s.now()
	var value string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rate_counters (counter_key, value, expires_at) VALUES (?, '1', ?)
		 ON CONFLICT(counter_key) DO UPDATE SET
		   value = CASE
		     WHEN rate_counters.expires_at <= ? THEN '1'
		     ELSE CAST(CAST(rate_counters.value AS INTEGER) + 1 AS TEXT)
		   END,
		   expires_at = excluded.expires_at
		 RETURNING value`,
		key, now.Add(ttl).UnixMilli(), now.UnixMilli(),
	).Scan(&value)
	if err != nil {
		return 0, err
	}
	return parseCount(value), nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rate_counters WHERE expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
