package redis

import (
	"context"
	"time"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/adapter"
)

const simUpstreamKey = "rate_limit:sim_upstream"

// RateLimiter is a fixed-window counter shared by every instance through Redis.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
		return count <= int64(limit), nil
	}

	allowed := count <= int64(limit)
	if !allowed {
		// A lost EXPIRE on the first hit leaves the counter without a window.
		if ttl, err := r.client.TTL(ctx, key); err == nil && ttl == -1 {
			if err := r.client.Expire(ctx, key, window); err != nil {
				return false, err
			}
		}
	}
	return allowed, nil
}

var _ adapter.SimInventory = (*ThrottledInventory)(nil)

// ThrottledInventory guards the upstream inventory with a global call budget.
// An exhausted window yields domain.ErrRateLimited without calling upstream.
// Limiter backend errors let the call through.
type ThrottledInventory struct {
	inner   adapter.SimInventory
	limiter *RateLimiter
	limit   int
	window  time.Duration
}

func NewThrottledInventory(inner adapter.SimInventory, limiter *RateLimiter, limit int, window time.Duration) *ThrottledInventory {
	return &ThrottledInventory{inner: inner, limiter: limiter, limit: limit, window: window}
}

func (t *ThrottledInventory) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	ok, err := t.limiter.Allow(ctx, simUpstreamKey, t.limit, t.window)
	if err == nil && !ok {
		return nil, domain.ErrRateLimited
	}
	return t.inner.Availability(ctx, serial)
}
