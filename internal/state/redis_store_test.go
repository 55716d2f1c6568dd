package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "vitals:alert-state:", "tenant-1", time.Hour, zap.NewNop())
	return mr, store
}

func TestRedisStore_GetMissingReturnsEmpty(t *testing.T) {
	_, store := newTestRedisStore(t)

	state, err := store.Get(context.Background(), "patient-1")

	require.NoError(t, err)
	assert.Equal(t, "", state)
}

func TestRedisStore_SetGetClear(t *testing.T) {
	mr, store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "patient-1", "high"))

	state, err := store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "high", state)

	// Key layout: prefix, tenant, patient.
	assert.True(t, mr.Exists("vitals:alert-state:tenant-1:patient-1"))

	require.NoError(t, store.Clear(ctx, "patient-1"))

	state, err = store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "", state)
}

func TestRedisStore_StateExpires(t *testing.T) {
	mr, store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "patient-1", "low"))
	mr.FastForward(2 * time.Hour)

	state, err := store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "", state)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state, err := store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "", state)

	require.NoError(t, store.Set(ctx, "patient-1", "high"))

	state, err = store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "high", state)

	require.NoError(t, store.Clear(ctx, "patient-1"))

	state, err = store.Get(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "", state)
}
