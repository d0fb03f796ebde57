package postgres

import (
	"context"
	"encoding/json"
	"time"

	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	"sim-activation-portal/internal/infra/metrics"
	red "sim-activation-portal/internal/infra/redis"
)

var _ repository.OfferRepository = (*offerRepoCacheDecorator)(nil)

const (
	offerListKey     = "offers:active"
	offerFeaturedKey = "offers:featured"
	defaultOfferTTL  = time.Hour
)

func offerKey(id string) string { return "offer:" + id }

type offerRepoCacheDecorator struct {
	inner repository.OfferRepository
	cache red.RedisClient
	ttl   time.Duration
}

// NewOfferRepoCacheDecorator caches catalog reads in Redis for ttl (one hour
// when ttl is not positive). Reads made inside a transaction go straight to
// inner so they observe uncommitted writes.
func NewOfferRepoCacheDecorator(inner repository.OfferRepository, cache red.RedisClient, ttl time.Duration) repository.OfferRepository {
	if ttl <= 0 {
		ttl = defaultOfferTTL
	}
	return &offerRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (d *offerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := offerKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var o model.SubscriptionOffer
		if json.Unmarshal([]byte(val), &o) == nil {
			metrics.IncCacheRequest("offer", "hit")
			return &o, nil
		}
	} else if err != red.Nil {
		metrics.IncCacheRequest("offer", "error")
	}

	metrics.IncCacheRequest("offer", "miss")
	o, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(o); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return o, nil
}

func (d *offerRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	if tx != nil {
		return d.inner.ListActive(ctx, tx, featuredOnly)
	}
	key := offerListKey
	if featuredOnly {
		key = offerFeaturedKey
	}
	if val, err := d.cache.Get(ctx, key); err == nil {
		var offers []*model.SubscriptionOffer
		if json.Unmarshal([]byte(val), &offers) == nil {
			metrics.IncCacheRequest("offer_list", "hit")
			return offers, nil
		}
	} else if err != red.Nil {
		metrics.IncCacheRequest("offer_list", "error")
	}

	metrics.IncCacheRequest("offer_list", "miss")
	offers, err := d.inner.ListActive(ctx, tx, featuredOnly)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(offers); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return offers, nil
}

// Writes invalidate before delegating and again once the write is visible
// to other connections, i.e. after the enclosing transaction commits.
func (d *offerRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error {
	d.invalidate(ctx, o.ID)
	if err := d.inner.Save(ctx, tx, o); err != nil {
		return err
	}
	d.invalidateAfterCommit(ctx, o.ID)
	return nil
}

func (d *offerRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	d.invalidate(ctx, id)
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	d.invalidateAfterCommit(ctx, id)
	return nil
}

func (d *offerRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	_ = d.cache.Del(ctx, offerKey(id), offerListKey, offerFeaturedKey)
}

func (d *offerRepoCacheDecorator) invalidateAfterCommit(ctx context.Context, id string) {
	repository.AfterCommit(ctx, func() { d.invalidate(ctx, id) })
}
