package businessflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StoreLock serializes writers of the data directory. The returned release func must be called once.
type StoreLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// MutexLock guards the store within one process
type MutexLock struct {
	sem chan struct{}
}

// NewMutexLock creates an in-process store lock
func NewMutexLock() *MutexLock {
	return &MutexLock{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done
func (l *MutexLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
	}
}

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLock is an advisory lock shared by every process pointing at the same data directory
type RedisLock struct {
	client     redis.Cmdable
	key        string
	ttl        time.Duration
	retryEvery time.Duration
	waitFor    time.Duration
}

// NewRedisLock creates a lock on key. ttl bounds how long a crashed holder blocks others;
// waitFor bounds how long Acquire retries before giving up.
func NewRedisLock(client redis.Cmdable, key string, ttl, waitFor time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if waitFor <= 0 {
		waitFor = 10 * time.Second
	}
	return &RedisLock{
		client:     client,
		key:        key,
		ttl:        ttl,
		retryEvery: 50 * time.Millisecond,
		waitFor:    waitFor,
	}
}

// Acquire retries SET NX PX until it wins, ctx ends or the wait budget runs out
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	deadline := time.NewTimer(l.waitFor)
	defer deadline.Stop()
	ticker := time.NewTicker(l.retryEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %w", ErrLockNotAcquired, err)
		}
		if ok {
			return func() {
				// The request context may already be cancelled; release must still run.
				rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.client, []string{l.key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s held by another process", ErrLockNotAcquired, l.key)
		case <-ticker.C:
		}
	}
}
