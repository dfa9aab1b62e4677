package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Hour)
	m.now = func() time.Time { return now }

	user := uuid.New()
	token, err := m.Create(ctx, user)
	require.NoError(t, err)

	got, err := m.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = m.Lookup(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(time.Hour)
	_, err = m.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound, "expired sessions are rejected")

	token, err = m.Create(ctx, user)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, token))
	_, err = m.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySweepsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Hour)
	m.now = func() time.Time { return now }

	for range 5 {
		_, err := m.Create(ctx, uuid.New())
		require.NoError(t, err)
	}
	assert.Len(t, m.sessions, 5)

	now = now.Add(time.Hour + sweepInterval)
	live, err := m.Create(ctx, uuid.New())
	require.NoError(t, err)
	assert.Len(t, m.sessions, 1, "abandoned sessions are dropped without a lookup")
	assert.Contains(t, m.sessions, live)
}

// TestRedisLifecycle needs a running Redis, e.g. TEST_REDIS_URL=localhost:6379.
func TestRedisLifecycle(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	r := NewRedis(client, time.Minute)
	user := uuid.New()
	token, err := r.Create(ctx, user)
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, redisKey(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	got, err := r.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, r.Delete(ctx, token))
	_, err = r.Lookup(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}
