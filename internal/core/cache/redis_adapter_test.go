package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAdapter_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	key := "test_key"
	value := []byte("test_value")
	ttl := 10 * time.Second

	err = adapter.Set(ctx, key, value, ttl)
	assert.NoError(t, err)

	retrievedValue, err := adapter.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, value, retrievedValue)
}

func TestRedisAdapter_GetMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	_, err = adapter.Get(context.Background(), "non_existent_key")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_Delete(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	key := "delete_test"
	err = adapter.Set(ctx, key, []byte("value"), 0)
	require.NoError(t, err)

	err = adapter.Delete(ctx, key)
	assert.NoError(t, err)

	_, err = adapter.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()

	key := "ttl_test"
	err = adapter.Set(ctx, key, []byte("expires_soon"), 1*time.Second)
	require.NoError(t, err)

	// miniredis does not tick on its own
	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	adapter, err := NewRedisAdapter("not-a-redis-url")
	assert.Nil(t, adapter)
	assert.Error(t, err)
}

func TestRedisAdapter_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer adapter.Close()

	assert.NoError(t, adapter.Ping(context.Background()))
}
