package videos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyIsNamespaced(t *testing.T) {
	key := cacheKey("single", []string{"a"})
	assert.Len(t, key, len(cacheKeyPrefix)+64)
	assert.Equal(t, cacheKeyPrefix, key[:len(cacheKeyPrefix)])
}

func TestRedisCacheRoundTrip(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION_TESTS") != "1" {
		t.Skip("set RUN_DB_INTEGRATION_TESTS=1 to run redis checks")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	cache := NewRedisCache(client, time.Minute)
	key := cacheKey("single", []string{"integration-test"})

	var miss Result
	found, err := cache.Get(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	want := Result{PDFTitle: "Motion", Keywords: []string{"velocity"}, Videos: []Recommendation{}}
	require.NoError(t, cache.Set(ctx, key, want))

	var got Result
	found, err = cache.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, client.Set(ctx, key, "not json", time.Minute).Err())
	_, err = cache.Get(ctx, key, &got)
	assert.Error(t, err)
	assert.Equal(t, int64(0), client.Exists(ctx, key).Val(), "undecodable entries are evicted")

	require.NoError(t, cache.Set(ctx, key, want))
	n, err := cache.Clear(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
