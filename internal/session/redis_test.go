package session

import (
	"context"
	"testing"
	"time"

	rediskey "it_store/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := rd.NewClient(&rd.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStoreSlidingExpiry(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestRedisStore(t, 24*time.Hour)

	s, err := st.Create(ctx, "somchai")
	require.NoError(t, err)
	key := rediskey.SessionKey(s.ID)
	require.Equal(t, 24*time.Hour, mr.TTL(key))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, "somchai", got.Username)
	require.WithinDuration(t, s.CreatedAt, got.CreatedAt, time.Millisecond)

	// 23 小时后访问，TTL 重新计为 24 小时
	mr.FastForward(23 * time.Hour)
	require.NoError(t, st.Touch(ctx, s.ID))
	require.Equal(t, 24*time.Hour, mr.TTL(key))

	mr.FastForward(23 * time.Hour)
	_, err = st.Get(ctx, s.ID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = st.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, st.Touch(ctx, s.ID), ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestRedisStore(t, time.Hour)

	s, err := st.Create(ctx, "somchai")
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, s.ID))
	require.False(t, mr.Exists(rediskey.SessionKey(s.ID)))

	_, err = st.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.Delete(ctx, "missing"))
}

func TestRedisStoreUnknownSession(t *testing.T) {
	st, _ := newTestRedisStore(t, time.Hour)
	_, err := st.Get(context.Background(), "forged")
	require.ErrorIs(t, err, ErrNotFound)
}
