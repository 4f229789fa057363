package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

const (
	mapGenerationKey = "aqui:map:generation"
	mapEntryPrefix   = "aqui:map:v"
)

// MapCache stores live-vendor rows per viewport as JSON. Statuses are not
// cached; callers derive them from the rows at read time.
type MapCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewMapCache(client goredis.UniversalClient, ttl time.Duration) *MapCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MapCache{client: client, ttl: ttl}
}

func (c *MapCache) key(generation int64, key string) string {
	return fmt.Sprintf("%s%d:%s", mapEntryPrefix, generation, key)
}

// Generation returns the current generation; zero until the first
// invalidation.
func (c *MapCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, mapGenerationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *MapCache) Get(ctx context.Context, generation int64, key string) ([]domain.LiveVendor, bool, error) {
	val, err := c.client.Get(ctx, c.key(generation, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.LiveVendor
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, false, fmt.Errorf("map cache: unmarshal: %w", err)
	}
	return items, true, nil
}

// Set stores rows under the generation they were read in. A write for a
// generation that has since been invalidated is dropped.
func (c *MapCache) Set(ctx context.Context, generation int64, key string, items []domain.LiveVendor) error {
	if items == nil {
		items = []domain.LiveVendor{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("map cache: marshal: %w", err)
	}
	current, err := c.Generation(ctx)
	if err != nil {
		return err
	}
	if current != generation {
		return nil
	}
	return c.client.Set(ctx, c.key(generation, key), data, c.ttl).Err()
}

// Invalidate bumps the generation, then drops entries of older generations.
// Keys are found with SCAN so large keyspaces are never blocked by KEYS.
func (c *MapCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, mapGenerationKey).Err(); err != nil {
		return err
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, mapEntryPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

var _ ports.MapCache = (*MapCache)(nil)
