// Package kv provides the expiring key-value stores that back the contact
// rate limiter.
package kv

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Store is a string key-value store with per-key expiry.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes value with an expiry of ttl measured from now.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// Incrementer is implemented by stores that can increment a counter
// atomically. The counter restarts at 1 when the key is absent, expired or
// not numeric, and its expiry is reset to ttl from now.
type Incrementer interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Sweeper is implemented by stores that can drop expired keys in bulk.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// parseCount reads a stored counter; anything unparsable counts as zero.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// RunSweeper calls s.DeleteExpired every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				slog.Error("failed to sweep expired counters", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("expired counters swept", "rows_affected", n)
			}
		}
	}
}
