package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value  string
	expire time.Time
}

// MemoryStore is an in-process Store. Counters are lost on restart and are
// not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore. A nil now uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ Incrementer = (*MemoryStore)(nil)
	_ Sweeper     = (*MemoryStore)(nil)
)

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(key)
	return v, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expire: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, _ := s.lookup(key)
	next := parseCount(current) + 1
	s.entries[key] = memoryEntry{value: strconv.FormatInt(next, 10), expire: s.now().Add(ttl)}
	return next, nil
}

// DeleteExpired removes every expired entry and reports how many were dropped.
func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for k, e := range s.entries {
		if !now.Before(e.expire) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(key string) (string, bool) {
	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !s.now().Before(e.expire) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}
