package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker-backend/internal/logging"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		in       string
		wantAddr string
		wantDB   int
	}{
		{"", "redis:6379", 0},
		{"localhost:6380", "localhost:6380", 0},
		{"redis://cache:6379/2", "cache:6379", 2},
	}
	for _, tt := range tests {
		opt := Options(tt.in)
		assert.Equal(t, tt.wantAddr, opt.Addr, tt.in)
		assert.Equal(t, tt.wantDB, opt.DB, tt.in)
	}
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c3f5e-2d44-4c55-9a0e-0a6a1b2c3d4e")
	assert.Equal(t, "dashboard:6f1c3f5e-2d44-4c55-9a0e-0a6a1b2c3d4e", Key(id))
}

func TestDisabledCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	var nilCache *Dashboard
	nilCache.Set(ctx, id, map[string]int{"a": 1})
	nilCache.Invalidate(ctx, id)
	var dst map[string]int
	assert.False(t, nilCache.Get(ctx, id, &dst))

	noClient := NewDashboard(nil, time.Minute, logging.Discard())
	noClient.Set(ctx, id, map[string]int{"a": 1})
	assert.False(t, noClient.Get(ctx, id, &dst))
}

// TestDashboardRoundTrip needs a running Redis, e.g. TEST_REDIS_URL=localhost:6379.
func TestDashboardRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	c := NewDashboard(client, time.Minute, logging.Discard())
	id := uuid.New()
	c.Set(ctx, id, map[string]int{"monthNet": 42})

	var got map[string]int
	require.True(t, c.Get(ctx, id, &got))
	assert.Equal(t, 42, got["monthNet"])

	c.Invalidate(ctx, id)
	assert.False(t, c.Get(ctx, id, &got))
}
