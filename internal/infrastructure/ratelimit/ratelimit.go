// Package ratelimit bounds order creation per client identity over a sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultMax    = 3
)

type Options struct {
	Window time.Duration
	Max    int
	// Clock is used in tests; defaults to time.Now.
	Clock func() time.Time
	Tel   observability.Observability
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Max <= 0 {
		o.Max = DefaultMax
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Tel == nil {
		o.Tel = observability.Nop()
	}
	return o
}

// SlidingWindow keeps per-key attempt timestamps in process memory.
type SlidingWindow struct {
	mu      sync.Mutex
	opts    Options
	hits    map[string][]time.Time
	calls   int
	limited observability.BoundCounter
}

func NewSlidingWindow(opts Options) *SlidingWindow {
	opts = opts.withDefaults()
	return &SlidingWindow{
		opts:    opts,
		hits:    make(map[string][]time.Time),
		limited: opts.Tel.Metrics().Counter(observability.MRateLimited).Bind(observability.L("backend", "memory")),
	}
}

func (l *SlidingWindow) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	_ = ctx
	now := l.opts.Clock()
	cutoff := now.Add(-l.opts.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%1024 == 0 {
		l.prune(cutoff)
	}

	recent := evict(l.hits[key], cutoff)
	if len(recent) >= l.opts.Max {
		l.hits[key] = recent
		l.limited.Add(1)
		return false, recent[0].Add(l.opts.Window).Sub(now), nil
	}
	l.hits[key] = append(recent, now)
	return true, 0, nil
}

// prune drops keys whose every attempt is outside the window.
func (l *SlidingWindow) prune(cutoff time.Time) {
	for k, ts := range l.hits {
		if len(evict(ts, cutoff)) == 0 {
			delete(l.hits, k)
		}
	}
}

func evict(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}
