package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noticeboard/notice-board-api/internal/core/ports"
)

const (
	statsKey = "broadcasts:stats"
	statsTTL = 30 * time.Second
)

// StatsCache caches the broadcast stats aggregate as a JSON blob with a short
// TTL. Every broadcast mutation deletes the key, so a stale aggregate can
// outlive a write by at most one in-flight read.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get returns the cached aggregate, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context) (*ports.BroadcastStats, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var stats ports.BroadcastStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}
	return &stats, nil
}

// Set stores the aggregate for statsTTL.
func (c *StatsCache) Set(ctx context.Context, stats *ports.BroadcastStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, statsTTL).Err()
}

// Invalidate drops the cached aggregate.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statsKey).Err()
}
