package cache

import (
	"context"
	"testing"
	"time"

	"freeark_web/internal/building"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTokenBlacklist_AddAndExpire(t *testing.T) {
	mr, rdb := newRedis(t)
	bl := NewTokenBlacklist(rdb)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "tok", time.Minute))
	ok, err := bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("token_blacklist:tok"))

	mr.FastForward(2 * time.Minute)
	ok, err = bl.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenBlacklist_ExpiredTokenNotStored(t *testing.T) {
	mr, rdb := newRedis(t)
	bl := NewTokenBlacklist(rdb)

	require.NoError(t, bl.Add(context.Background(), "old", 0))
	assert.False(t, mr.Exists("token_blacklist:old"))
}

func TestTokenBlacklist_RedisDown(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	_, err := NewTokenBlacklist(rdb).Contains(context.Background(), "tok")
	assert.Error(t, err)
}

func TestTreeCache_RoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewTreeCache(rdb, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache is a miss")

	res := &building.Result{
		Tree: []*building.Node{{
			Value: "1", Label: "1栋",
			Children: []*building.Node{{
				Value: "1", Label: "1单元",
				Children: []*building.Node{{Value: "201", Label: "201室"}},
			}},
		}},
		Records: 1, Buildings: 1, Units: 1, Leaves: 1,
	}
	require.NoError(t, c.Set(ctx, res))
	assert.Equal(t, time.Minute, mr.TTL(treeKey))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTreeCache_EmptyTreeStaysNonNil(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewTreeCache(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &building.Result{Tree: []*building.Node{}}))
	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.Tree)
	assert.Empty(t, got.Tree)
}

func TestTreeCache_CorruptEntryIsMiss(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(treeKey, "{not json"))

	got, err := NewTreeCache(rdb, time.Minute).Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}
