package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func exerciseWindow(t *testing.T, l limiter, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
		clock.Advance(10 * time.Second)
	}

	ok, retry, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retry)

	ok, _, err = l.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	clock.Advance(30 * time.Second)
	ok, _, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, ok, "oldest attempt left the window")
}

func TestSlidingWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	exerciseWindow(t, NewSlidingWindow(Options{Clock: clock.Now}), clock)
}

func TestSlidingWindowCustomLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSlidingWindow(Options{Window: time.Second, Max: 1, Clock: clock.Now})

	ok, _, _ := l.Allow(context.Background(), "k")
	assert.True(t, ok)
	ok, retry, _ := l.Allow(context.Background(), "k")
	assert.False(t, ok)
	assert.Equal(t, time.Second, retry)
}

func TestRedisSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	exerciseWindow(t, NewRedisSlidingWindow(client, Options{Clock: clock.Now}), clock)
}

func TestRedisSlidingWindowBackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, _, err := NewRedisSlidingWindow(client, Options{}).Allow(context.Background(), "k")
	assert.Error(t, err)
}
