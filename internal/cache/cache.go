// Package cache holds the Redis connection and the per-user dashboard cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultAddr is used when REDIS_URL is unset.
const DefaultAddr = "redis:6379"

// Options turns REDIS_URL into client options. Both redis://host:port/db and
// a bare host:port are accepted.
func Options(redisURL string) *redis.Options {
	if redisURL == "" {
		redisURL = DefaultAddr
	}
	raw := redisURL
	if !strings.Contains(raw, "://") {
		raw = fmt.Sprintf("redis://%s", raw)
	}
	opt, err := redis.ParseURL(raw)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{Addr: redisURL}
	}
	return opt
}

// Connect opens a client and pings it within five seconds.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	client := redis.NewClient(Options(redisURL))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Dashboard caches one JSON snapshot per user. A nil *Dashboard, or one
// without a client, is a cache that never hits.
type Dashboard struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewDashboard returns a cache writing entries with ttl. A ttl of zero
// disables caching.
func NewDashboard(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{client: client, ttl: ttl, logger: logger}
}

// Key is the Redis key holding the snapshot of userID.
func Key(userID uuid.UUID) string {
	return "dashboard:" + userID.String()
}

func (d *Dashboard) enabled() bool {
	return d != nil && d.client != nil && d.ttl > 0
}

// Get decodes the cached snapshot of userID into dst and reports whether it
// was found.
func (d *Dashboard) Get(ctx context.Context, userID uuid.UUID, dst any) bool {
	if !d.enabled() {
		return false
	}
	cached, err := d.client.Get(ctx, Key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.logger.WarnContext(ctx, "Dashboard cache read failed", "user_id", userID, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		d.logger.WarnContext(ctx, "Dashboard cache entry is corrupt", "user_id", userID, "error", err)
		return false
	}
	return true
}

// Set stores v as the snapshot of userID.
func (d *Dashboard) Set(ctx context.Context, userID uuid.UUID, v any) {
	if !d.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		d.logger.WarnContext(ctx, "Dashboard cache encode failed", "user_id", userID, "error", err)
		return
	}
	if err := d.client.SetEx(ctx, Key(userID), data, d.ttl).Err(); err != nil {
		d.logger.WarnContext(ctx, "Dashboard cache write failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the snapshot of userID.
func (d *Dashboard) Invalidate(ctx context.Context, userID uuid.UUID) {
	if !d.enabled() {
		return
	}
	if err := d.client.Del(ctx, Key(userID)).Err(); err != nil {
		d.logger.WarnContext(ctx, "Dashboard cache invalidation failed", "user_id", userID, "error", err)
	}
}
