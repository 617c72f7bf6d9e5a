package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// DefaultHeatmapTTL is how long a generated heatmap stays cached
const DefaultHeatmapTTL = 300 * time.Second

// HeatmapCache stores generated heatmaps per session as JSON
type HeatmapCache interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, sessionID string) (*model.HeatmapResult, error)
	Set(ctx context.Context, result *model.HeatmapResult) error
	Delete(ctx context.Context, sessionID string) error
}

type heatmapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHeatmapCache creates a heatmap cache. A non-positive ttl uses DefaultHeatmapTTL.
func NewHeatmapCache(client *redis.Client, ttl time.Duration) HeatmapCache {
	if ttl <= 0 {
		ttl = DefaultHeatmapTTL
	}
	return &heatmapCache{
		client: client,
		ttl:    ttl,
	}
}

// HeatmapKey is the cache key for a session's heatmap
func HeatmapKey(sessionID string) string {
	return fmt.Sprintf("heatmap:%s", sessionID)
}

func (c *heatmapCache) Get(ctx context.Context, sessionID string) (*model.HeatmapResult, error) {
	data, err := c.client.Get(ctx, HeatmapKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.HeatmapResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached heatmap %s: %w", sessionID, err)
	}
	return &result, nil
}

func (c *heatmapCache) Set(ctx context.Context, result *model.HeatmapResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, HeatmapKey(result.SessionID), data, c.ttl).Err()
}

func (c *heatmapCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, HeatmapKey(sessionID)).Err()
}
