// Package ratelimit caps contact submissions per source address using
// fixed minute and day buckets held in a kv.Store.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ecovolt/backend/internal/kv"
)

const (
	// MinuteLimit is the last allowed attempt number within one minute bucket.
	MinuteLimit = 3
	// DayLimit is the last allowed attempt number within one day bucket.
	DayLimit = 20

	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour

	ReasonMinute = "Rate limit (minute)"
	ReasonDay    = "Rate limit (day)"
)

// Decision is the result of one Check.
type Decision struct {
	Allowed bool
	Reason  string
	// Minute and Day are the counter values after this attempt. Day is zero
	// when the minute bucket already rejected the attempt.
	Minute int64
	Day    int64
}

// Limiter counts attempts per address. The zero value and a Limiter
// without a store allow everything.
type Limiter struct {
	store kv.Store
	now   func() time.Time
}

// New creates a Limiter over store. A nil now uses time.Now.
func New(store kv.Store, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, now: now}
}

// Check counts one attempt from ip and reports whether it is within limits.
// The minute counter is incremented first; the day counter is only
// incremented when the minute check passes.
func (l *Limiter) Check(ctx context.Context, ip string) (Decision, error) {
	if l == nil || l.store == nil {
		return Decision{Allowed: true}, nil
	}
	nowMs := l.now().UnixMilli()

	perMinute, err := l.increment(ctx, MinuteKey(ip, nowMs), minuteWindow)
	if err != nil {
		return Decision{}, fmt.Errorf("minute counter: %w", err)
	}
	if perMinute > MinuteLimit {
		return Decision{Reason: ReasonMinute, Minute: perMinute}, nil
	}

	perDay, err := l.increment(ctx, DayKey(ip, nowMs), dayWindow)
	if err != nil {
		return Decision{}, fmt.Errorf("day counter: %w", err)
	}
	if perDay > DayLimit {
		return Decision{Reason: ReasonDay, Minute: perMinute, Day: perDay}, nil
	}

	return Decision{Allowed: true, Minute: perMinute, Day: perDay}, nil
}

// increment prefers the store's atomic increment and falls back to a
// read-then-write pair, which can under-count concurrent attempts.
func (l *Limiter) increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if inc, ok := l.store.(kv.Incrementer); ok {
		return inc.Incr(ctx, key, ttl)
	}

	current, _, err := l.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		n = 0
	}
	n++
	if err := l.store.Put(ctx, key, strconv.FormatInt(n, 10), ttl); err != nil {
		return 0, err
	}
	return n, nil
}

// MinuteKey is the counter key for ip in the minute bucket containing nowMs.
func MinuteKey(ip string, nowMs int64) string {
	return "min:" + ip + ":" + strconv.FormatInt(nowMs/minuteWindow.Milliseconds(), 10)
}

// DayKey is the counter key for ip in the day bucket containing nowMs.
func DayKey(ip string, nowMs int64) string {
	return "day:" + ip + ":" + strconv.FormatInt(nowMs/dayWindow.Milliseconds(), 10)
}
