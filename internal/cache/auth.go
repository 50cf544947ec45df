package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waxlog/waxlog/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authCacheTTL is the time-to-live for cached auth contexts.
	authCacheTTL = 5 * time.Minute
)

// GetAuthContext retrieves a cached auth context by token hash.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, tokenHash string) (*model.AuthContext, error) {
	key := authCachePrefix + tokenHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached model.AuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetAuthContext caches an auth context under a token hash.
func (c *Cache) SetAuthContext(ctx context.Context, tokenHash string, auth *model.AuthContext) error {
	key := authCachePrefix + tokenHash

	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, key, data, authCacheTTL).Err()
}

// DeleteAuthContext removes a cached auth context.
// Used on logout so a token stops resolving immediately.
func (c *Cache) DeleteAuthContext(ctx context.Context, tokenHash string) error {
	key := authCachePrefix + tokenHash
	return c.client.Del(ctx, key).Err()
}
