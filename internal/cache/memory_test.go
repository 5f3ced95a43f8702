package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "key", "value", time.Hour))

	value, ok, err := kv.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestMemoryGetMissing(t *testing.T) {
	kv := NewMemory()

	_, ok, err := kv.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiration(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "key", "value", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := kv.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok, "просроченная запись не возвращается")
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "key", "value", 0))

	_, ok, err := kv.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryDel(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "a", "1", time.Hour))
	require.NoError(t, kv.Set(ctx, "b", "2", time.Hour))

	require.NoError(t, kv.Del(ctx, "a", "b"))

	_, ok, _ := kv.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, "b")
	assert.False(t, ok)
}
