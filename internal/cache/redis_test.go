package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-platform/internal/config"
)

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedis(&config.RedisConfig{Addr: mr.Addr()},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, GlobalKey("GLOBAL", 10, 0), []byte(`[{"rank":1}]`), time.Minute)

	val, ok := c.Get(ctx, GlobalKey("GLOBAL", 10, 0))
	require.True(t, ok)
	assert.Equal(t, []byte(`[{"rank":1}]`), val)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Get(context.Background(), "lb:global:GLOBAL:10:0")
	assert.False(t, ok)
}

func TestExpiredKeyMisses(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, RecentKey(10), []byte(`[]`), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, RecentKey(10))
	assert.False(t, ok)
}

func TestDeleteByPatternRemovesLeaderboardKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, GlobalKey("GLOBAL", 10, 0), []byte(`a`), time.Minute)
	c.Set(ctx, GlobalKey("CLASSIC", 25, 5), []byte(`b`), time.Minute)
	c.Set(ctx, RankKey("GLOBAL", 7), []byte(`c`), time.Minute)
	c.Set(ctx, RecentKey(10), []byte(`d`), time.Minute)
	c.Set(ctx, StatsKey(7), []byte(`e`), time.Minute)

	c.DeleteByPattern(ctx, LeaderboardPattern)

	_, ok := c.Get(ctx, GlobalKey("GLOBAL", 10, 0))
	assert.False(t, ok)
	_, ok = c.Get(ctx, GlobalKey("CLASSIC", 25, 5))
	assert.False(t, ok)
	_, ok = c.Get(ctx, RankKey("GLOBAL", 7))
	assert.False(t, ok)
	_, ok = c.Get(ctx, RecentKey(10))
	assert.False(t, ok)

	// player stats live outside the lb: namespace
	_, ok = c.Get(ctx, StatsKey(7))
	assert.True(t, ok)
}

func TestDeleteByPatternSingleKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, StatsKey(1), []byte(`a`), time.Minute)
	c.Set(ctx, StatsKey(2), []byte(`b`), time.Minute)

	c.DeleteByPattern(ctx, StatsKey(1))

	_, ok := c.Get(ctx, StatsKey(1))
	assert.False(t, ok)
	_, ok = c.Get(ctx, StatsKey(2))
	assert.True(t, ok)
}

func TestNoopAlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	c.Set(ctx, "key", []byte(`value`), time.Minute)
	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}
