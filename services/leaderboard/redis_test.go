package lbsvc

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeaderboard(t *testing.T) *RedisLeaderboard {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "starting miniredis")
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLeaderboardFromClient(client)
}

func TestRedisLeaderboard(t *testing.T) {
	ctx := context.Background()
	lb := newTestLeaderboard(t)

	require.NoError(t, lb.RecordXP(ctx, "alice", 1200))
	require.NoError(t, lb.RecordXP(ctx, "bob", 300))
	require.NoError(t, lb.RecordXP(ctx, "carol", 900))

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, Entry{UserID: "alice", TotalXP: 1200, Rank: 1}, top[0])
	assert.Equal(t, Entry{UserID: "carol", TotalXP: 900, Rank: 2}, top[1])

	// re-recording overwrites the score rather than accumulating it
	require.NoError(t, lb.RecordXP(ctx, "bob", 1500))
	top, err = lb.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "bob", top[0].UserID)
	assert.Equal(t, 1500, top[0].TotalXP)

	entry, ok, err := lb.Rank(ctx, "carol")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Entry{UserID: "carol", TotalXP: 900, Rank: 3}, entry)

	_, ok, err = lb.Rank(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLeaderboard_TopEmpty(t *testing.T) {
	ctx := context.Background()
	lb := newTestLeaderboard(t)

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	top, err = lb.Top(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, top)
}
