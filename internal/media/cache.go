package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// URLCache stores resolved URLs per asset, keyed by a size field.
type URLCache interface {
	Get(ctx context.Context, assetID int64, field string) (string, bool, error)
	Put(ctx context.Context, assetID int64, field, url string, ttl time.Duration) error
	Invalidate(ctx context.Context, assetID int64) error
}

// RedisCache keeps one hash per asset so that invalidation is a single DEL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "avatar:media:url:"}
}

func (c *RedisCache) key(assetID int64) string {
	return c.prefix + strconv.FormatInt(assetID, 10)
}

func (c *RedisCache) Get(ctx context.Context, assetID int64, field string) (string, bool, error) {
	val, err := c.client.HGet(ctx, c.key(assetID), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Put(ctx context.Context, assetID int64, field, url string, ttl time.Duration) error {
	key := c.key(assetID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, url)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, assetID int64) error {
	if err := c.client.Del(ctx, c.key(assetID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
