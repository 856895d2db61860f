package redisdedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Hour), mr
}

func TestMarkAppliedAndSeen(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	seen, err := s.Seen(ctx, "charge.success", "INV-123")
	require.NoError(t, err)
	assert.False(t, seen)

	stored, err := s.MarkApplied(ctx, "charge.success", "INV-123")
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.MarkApplied(ctx, "charge.success", "INV-123")
	require.NoError(t, err)
	assert.False(t, stored)

	seen, err = s.Seen(ctx, "charge.success", "INV-123")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.Seen(ctx, "charge.failed", "INV-123")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMarkerExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.MarkApplied(ctx, "charge.success", "INV-9")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	seen, err := s.Seen(ctx, "charge.success", "INV-9")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewFromURL(context.Background(), "redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = NewFromURL(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}
