package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/adapter"
	"sim-activation-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.SimInventory = (*SimInventoryCache)(nil)

// SimInventoryCache memoizes upstream answers per serial for a fixed TTL.
// Both available and unavailable answers are stored; errors are not.
type SimInventoryCache struct {
	inner adapter.SimInventory
	cache RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewSimInventoryCache(inner adapter.SimInventory, cache RedisClient, ttl time.Duration, logger *zerolog.Logger) *SimInventoryCache {
	l := logger.With().Str("component", "SimInventoryCache").Logger()
	return &SimInventoryCache{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func simKey(serial string) string { return "sim_availability:" + serial }

func (c *SimInventoryCache) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	key := simKey(serial)
	val, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var a model.SimAvailability
		if json.Unmarshal([]byte(val), &a) == nil {
			metrics.IncCacheRequest("sim", "hit")
			return &a, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case errors.Is(err, Nil):
	default:
		metrics.IncCacheRequest("sim", "error")
		c.log.Warn().Err(err).Msg("sim cache read failed")
	}

	metrics.IncCacheRequest("sim", "miss")
	a, err := c.inner.Availability(ctx, serial)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(a); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("sim cache write failed")
		}
	}
	return a, nil
}
