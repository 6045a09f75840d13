//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// Run with: go test -tags integration ./internal/cache/...
func TestRedisCacheAgainstContainer(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedis(rdb, time.Second)
	require.NoError(t, c.Store(ctx, KeyItems, []row{{"MT-0001", 4}}))

	var got []row
	hit, err := c.Load(ctx, KeyItems, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []row{{"MT-0001", 4}}, got)

	require.NoError(t, c.Invalidate(ctx, KeyItems, KeyTransactions))
	hit, err = c.Load(ctx, KeyItems, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Store(ctx, KeyTransactions, []row{{"MT-0001", 1}}))
	time.Sleep(1500 * time.Millisecond)
	hit, err = c.Load(ctx, KeyTransactions, &got)
	require.NoError(t, err)
	assert.False(t, hit, "redis expires entries after the TTL")
}
