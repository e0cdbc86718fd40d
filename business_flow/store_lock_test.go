package businessflow

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLock(t *testing.T) {
	lock := NewMutexLock()

	release, err := lock.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lock.Acquire(ctx)
	assert.True(t, IsLockNotAcquired(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestRedisLock(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis lock test")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	key := "leadconnect:test:" + uuid.NewString()
	defer client.Del(ctx, key)

	first := NewRedisLock(client, key, 5*time.Second, 100*time.Millisecond)
	second := NewRedisLock(client, key, 5*time.Second, 100*time.Millisecond)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)

	_, err = second.Acquire(ctx)
	assert.True(t, IsLockNotAcquired(err))

	release()
	exists, err := client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	release2, err := second.Acquire(ctx)
	require.NoError(t, err)

	// a stale release from the first holder must not drop the second holder's lock
	release()
	exists, err = client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	release2()
}
