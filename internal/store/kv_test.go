package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisKV(client), mr
}

func TestRedisKV_SetGet(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "buzzer_control/D1", `{"buzzer":"on"}`, 0))

	val, err := kv.Get(ctx, "buzzer_control/D1")
	require.NoError(t, err)
	assert.Equal(t, `{"buzzer":"on"}`, val)
}

func TestRedisKV_GetMiss(t *testing.T) {
	kv, _ := newTestKV(t)

	_, err := kv.Get(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SetOverwritesLastWriteWins(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "buzzer_control/D1", "off", 0))
	require.NoError(t, kv.Set(ctx, "buzzer_control/D1", "on", 0))

	val, err := kv.Get(ctx, "buzzer_control/D1")
	require.NoError(t, err)
	assert.Equal(t, "on", val)
}

func TestRedisKV_TTLExpires(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "vital:latest:M1", "{}", 5*time.Second))
	mr.FastForward(6 * time.Second)

	_, err := kv.Get(ctx, "vital:latest:M1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "buzzer_control/D1", "on", 0))
	require.NoError(t, kv.Set(ctx, "buzzer_control/D2", "off", 0))
	require.NoError(t, kv.Set(ctx, "vital:latest:M1", "{}", 0))

	keys, err := kv.ScanKeys(ctx, "buzzer_control/*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"buzzer_control/D1", "buzzer_control/D2"}, keys)
}
