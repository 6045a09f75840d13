package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Code string
	Qty  int
}

func TestMemoryServesWithinTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(200 * time.Millisecond)

	require.NoError(t, c.Store(ctx, KeyItems, []row{{"MT-0001", 3}}))

	var got []row
	hit, err := c.Load(ctx, KeyItems, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []row{{"MT-0001", 3}}, got)

	// Reads inside the window do not extend it
	time.Sleep(120 * time.Millisecond)
	_, _ = c.Load(ctx, KeyItems, &got)
	time.Sleep(120 * time.Millisecond)

	got = nil
	hit, err = c.Load(ctx, KeyItems, &got)
	require.NoError(t, err)
	assert.False(t, hit, "entry is stale once the TTL has elapsed")
	assert.Nil(t, got)
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Store(ctx, KeyItems, []row{{"MT-0001", 1}}))
	require.NoError(t, c.Store(ctx, KeyTransactions, []row{{"MT-0001", 1}}))

	require.NoError(t, c.Invalidate(ctx, KeyItems))

	var got []row
	hit, _ := c.Load(ctx, KeyItems, &got)
	assert.False(t, hit)
	hit, _ = c.Load(ctx, KeyTransactions, &got)
	assert.True(t, hit)
}

func TestMemoryReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	require.NoError(t, c.Store(ctx, KeyItems, []row{{"MT-0001", 1}}))

	var first []row
	_, _ = c.Load(ctx, KeyItems, &first)
	first[0].Qty = 99

	var second []row
	_, _ = c.Load(ctx, KeyItems, &second)
	assert.Equal(t, 1, second[0].Qty)
}

func TestMemoryZeroTTLDisablesCaching(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)
	require.NoError(t, c.Store(ctx, KeyItems, []row{{"MT-0001", 1}}))

	var got []row
	hit, err := c.Load(ctx, KeyItems, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
