package kv

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testStore interface {
	Store
	Incrementer
	Sweeper
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s testStore, clock *fakeClock)) {
	t.Run("memory", func(t *testing.T) {
		clock := newFakeClock()
		fn(t, NewMemoryStore(clock.Now), clock)
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := sql.Open("sqlite", ":memory:")
		require.NoError(t, err)
		db.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = db.Close() })

		clock := newFakeClock()
		s := NewSQLStore(db, clock.Now)
		require.NoError(t, s.EnsureSchema(context.Background()))
		fn(t, s, clock)
	})
}

func TestStore_GetMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, _ *fakeClock) {
		_, ok, err := s.Get(context.Background(), "min:203.0.113.1:1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_PutThenGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, _ *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "k", "2", time.Minute))
		require.NoError(t, s.Put(ctx, "k", "3", time.Minute))

		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "3", v)
	})
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "k", "1", time.Minute))

		clock.Advance(59 * time.Second)
		_, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "key should still be live before the TTL elapses")

		clock.Advance(time.Second)
		_, ok, err = s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok, "key should expire once the TTL elapses")
	})
}

func TestStore_IncrCountsAndResetsAfterExpiry(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, clock *fakeClock) {
		ctx := context.Background()
		for want := int64(1); want <= 4; want++ {
			got, err := s.Incr(ctx, "c", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		clock.Advance(2 * time.Minute)
		got, err := s.Incr(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})
}

func TestStore_IncrTreatsGarbageAsZero(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, _ *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "c", "not-a-number", time.Minute))

		got, err := s.Incr(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})
}

func TestStore_DeleteExpired(t *testing.T) {
	eachStore(t, func(t *testing.T, s testStore, clock *fakeClock) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "short", "1", time.Minute))
		require.NoError(t, s.Put(ctx, "long", "1", time.Hour))

		clock.Advance(time.Minute)
		n, err := s.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, ok, err := s.Get(ctx, "long")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestMemoryStore_ConcurrentIncrIsExact(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Incr(ctx, "c", time.Minute)
		}()
	}
	wg.Wait()

	v, ok, err := s.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "50", v)
}

func TestRunSweeper_StopsOnCancel(t *testing.T) {
	s := NewMemoryStore(nil)
	require.NoError(t, s.Put(context.Background(), "gone", "1", -time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, s, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not return after cancel")
	}
}
