package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryRedis) DelIfValue(_ context.Context, key, value string) (bool, error) {
	if v, ok := m.values[key]; ok && v == value {
		delete(m.values, key)
		return true, nil
	}
	return false, nil
}

func (m *memoryRedis) LockKey(name string) string { return "ph:lock:" + name }

func (m *memoryRedis) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.SetNX(ctx, key, "1", ttl)
}

func (m *memoryRedis) ReminderKey(orderID, kind string) string {
	return "ph:reminder:" + kind + ":" + orderID
}

func TestRedisLockIsExclusivePerJob(t *testing.T) {
	store := newMemoryRedis()
	locker, err := NewRedisLocker(store, 0)
	require.NoError(t, err)
	ctx := context.Background()

	first := locker.Lock("order-reconcile")
	second := locker.Lock("order-reconcile")
	other := locker.Lock("order-reminder")

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, defaultLockTTL, store.ttls["ph:lock:order-reconcile"])

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "different jobs do not block each other")

	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "ph:lock:order-reconcile", "non-owner release is a no-op")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.values, "ph:lock:order-reconcile")
}

func TestRedisLockReleaseLeavesTakenOverLock(t *testing.T) {
	store := newMemoryRedis()
	locker, err := NewRedisLocker(store, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	lock := locker.Lock("job")
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	store.values["ph:lock:job"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["ph:lock:job"])

	delete(store.values, "ph:lock:job")
	require.NoError(t, lock.Release(ctx))

	_, err = NewRedisLocker(nil, time.Minute)
	assert.Error(t, err)
}
