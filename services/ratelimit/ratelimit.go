package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a caller identity may proceed within the current
// window
type Limiter interface {
	// Allow consumes one slot for the identity and reports whether the
	// request may proceed, plus the remaining slots in the window.
	Allow(ctx context.Context, identity string) (bool, int, error)
}

// FixedWindow implements a fixed-window counter on Redis, keyed by caller
// identity. All worker instances share the same counters.
type FixedWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

var _ Limiter = (*FixedWindow)(nil)

// NewFixedWindow creates a limiter allowing limit requests per window
func NewFixedWindow(client *redis.Client, limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

// Allow increments the identity's window counter, starting the window on
// the first hit. The count may briefly exceed the limit under concurrent
// callers; all of those requests are still denied.
func (f *FixedWindow) Allow(ctx context.Context, identity string) (bool, int, error) {
	key := f.prefix + identity

	count, err := f.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := f.client.Expire(ctx, key, f.window).Err(); err != nil {
			return false, 0, err
		}
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return int(count) <= f.limit, remaining, nil
}
