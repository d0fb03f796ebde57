//go:build !integration

package postgres

import (
	"context"
	"time"

	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	red "sim-activation-portal/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

type mockInnerOfferRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error
	DeleteFunc     func(ctx context.Context, tx repository.Tx, id string) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error)
}

func (m *mockInnerOfferRepo) Save(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error {
	return m.SaveFunc(ctx, tx, o)
}
func (m *mockInnerOfferRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}
func (m *mockInnerOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerOfferRepo) ListActive(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	return m.ListActiveFunc(ctx, tx, featuredOnly)
}

// mockRedisClient is a map-backed RedisClient; the func fields override it.
type mockRedisClient struct {
	data    map[string]string
	ttls    map[string]time.Duration
	GetFunc func(ctx context.Context, key string) (string, error)
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func newMockRedis() *mockRedisClient {
	return &mockRedisClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return "", red.Nil
	}
	return v, nil
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = expiration
	return nil
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	return -1, nil
}
func (m *mockRedisClient) Close() error { return nil }
