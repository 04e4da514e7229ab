package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := New(client, Config{Limit: limit, Window: time.Hour, Prefix: "web_form:"})
	require.NoError(t, err)

	n := 0
	l.seq = func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
	return l, mr
}

func TestNew_InvalidConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{})

	_, err := New(nil, Config{Limit: 1, Window: time.Minute})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(client, Config{Limit: 0, Window: time.Minute})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(client, Config{Limit: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAllow_BlocksAfterLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, info.Allowed)
		assert.Equal(t, 3-(i+1), info.Remaining)
	}

	info, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.Equal(t, 0, info.Remaining)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestAllow_WindowSlides(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	info, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, info.Allowed)

	info, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, info.Allowed)

	l.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	info, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}

func TestReset(t *testing.T) {
	l, mr := newTestLimiter(t, 1)
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, mr.Exists("web_form:ip"))

	require.NoError(t, l.Reset(ctx, "ip"))
	assert.False(t, mr.Exists("web_form:ip"))
}
