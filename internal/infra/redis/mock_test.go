package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sim-activation-portal/internal/domain/model"
)

// memRedis is an in-memory RedisClient; it records TTLs instead of expiring keys.
type memRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	incrErr error
	// expireFailures makes the next n Expire calls fail.
	expireFailures int
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) Ping(ctx context.Context) error { return nil }

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return nil
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", Nil
	}
	return v, nil
}

func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	fmt.Sscan(m.data[key], &n)
	n++
	m.data[key] = fmt.Sprint(n)
	return n, nil
}

func (m *memRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expireFailures > 0 {
		m.expireFailures--
		return errors.New("expire failed")
	}
	m.ttls[key] = expiration
	return nil
}

func (m *memRedis) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return -2, nil
	}
	ttl, ok := m.ttls[key]
	if !ok || ttl <= 0 {
		return -1, nil
	}
	return ttl, nil
}

// expireWindow simulates the key reaching its TTL.
func (m *memRedis) expireWindow(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ttls[key]; ok {
		delete(m.data, key)
		delete(m.ttls, key)
	}
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *memRedis) Close() error { return nil }

// countingInventory is a SimInventory stub that counts upstream calls.
type countingInventory struct {
	mu    sync.Mutex
	calls int
	resp  *model.SimAvailability
	err   error
}

func (c *countingInventory) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	cp := *c.resp
	cp.Serial = serial
	return &cp, nil
}

func (c *countingInventory) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
