package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSlidingExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	m := NewMemoryStore(24 * time.Hour)
	m.now = func() time.Time { return now }

	s, err := m.Create(ctx, "somchai")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, "somchai", got.Username)

	// 23 小时后续期，再过 23 小时仍有效
	now = now.Add(23 * time.Hour)
	require.NoError(t, m.Touch(ctx, s.ID))
	now = now.Add(23 * time.Hour)
	_, err = m.Get(ctx, s.ID)
	require.NoError(t, err)

	// 超过 24 小时未活动则过期
	now = now.Add(2 * time.Hour)
	_, err = m.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Touch(ctx, s.ID), ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)

	s, err := m.Create(ctx, "somchai")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, s.ID))
	_, err = m.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(ctx, "missing"))
}

func TestMemoryStoreIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)
	a, err := m.Create(ctx, "somchai")
	require.NoError(t, err)
	b, err := m.Create(ctx, "somchai")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}
