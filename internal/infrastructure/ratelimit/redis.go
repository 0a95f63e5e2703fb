package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:orders:"

// slidingWindowScript trims the set, then either records the attempt or returns the wait in ms.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, tonumber(oldest[2]) + window - now}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// RedisSlidingWindow shares the window across instances through a sorted set per key.
type RedisSlidingWindow struct {
	client  redis.UniversalClient
	opts    Options
	limited observability.BoundCounter
}

func NewRedisSlidingWindow(client redis.UniversalClient, opts Options) *RedisSlidingWindow {
	opts = opts.withDefaults()
	return &RedisSlidingWindow{
		client:  client,
		opts:    opts,
		limited: opts.Tel.Metrics().Counter(observability.MRateLimited).Bind(observability.L("backend", "redis")),
	}
}

func (l *RedisSlidingWindow) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.opts.Clock().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{keyPrefix + key},
		now, l.opts.Window.Milliseconds(), l.opts.Max, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("ratelimit: redis: unexpected reply %v", res)
	}
	if res[0] == 1 {
		return true, 0, nil
	}
	l.limited.Add(1)
	return false, time.Duration(res[1]) * time.Millisecond, nil
}
