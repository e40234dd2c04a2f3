package locker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu     sync.Mutex
	values map[string]any
	setErr error
	evals  int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]any)}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, taken := f.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals++
	if f.values[keys[0]] == args[0] {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	fake := newFakeRedis()
	l := newRedisLocker(fake, time.Second, nil)

	unlock, err := l.Lock(context.Background(), SupplierKey("s-2"), SupplierKey("s-1"))
	require.NoError(t, err)
	assert.Len(t, fake.values, 2)
	assert.Contains(t, fake.values, keyNamespace+"supplier:s-1")

	unlock()
	unlock()
	assert.Empty(t, fake.values)
	assert.Equal(t, 2, fake.evals)
}

func TestRedisLockerTimesOutWhenHeld(t *testing.T) {
	fake := newFakeRedis()
	fake.values[keyNamespace+"supplier:s-1"] = "someone-else"
	l := newRedisLocker(fake, time.Second, nil)
	l.retryDelay = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	_, err := l.Lock(ctx, SupplierKey("s-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockTimeout))
	assert.Equal(t, "someone-else", fake.values[keyNamespace+"supplier:s-1"])
}

func TestRedisLockerReleasesPartialOnError(t *testing.T) {
	fake := newFakeRedis()
	l := newRedisLocker(fake, time.Second, nil)

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()

	fake.setErr = errors.New("connection refused")
	_, err = l.Lock(context.Background(), "b")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLockTimeout))
}
