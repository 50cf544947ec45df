package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waxlog/waxlog/internal/model"
)

const (
	// albumCachePrefix is the Redis key prefix for album detail cache.
	albumCachePrefix = "album:detail:"
	// albumCacheTTL bounds staleness of avg rating and log counts.
	albumCacheTTL = 10 * time.Minute
)

// GetAlbumDetail retrieves a cached album detail.
// Returns nil if not found (cache miss).
func (c *Cache) GetAlbumDetail(ctx context.Context, albumID string) (*model.AlbumDetail, error) {
	key := albumCachePrefix + albumID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var detail model.AlbumDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &detail, nil
}

// SetAlbumDetail caches an album detail.
func (c *Cache) SetAlbumDetail(ctx context.Context, detail *model.AlbumDetail) error {
	key := albumCachePrefix + detail.ID

	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal album detail: %w", err)
	}

	return c.client.Set(ctx, key, data, albumCacheTTL).Err()
}

// InvalidateAlbum drops the cached detail after an album mutation.
func (c *Cache) InvalidateAlbum(ctx context.Context, albumID string) error {
	key := albumCachePrefix + albumID
	return c.client.Del(ctx, key).Err()
}
