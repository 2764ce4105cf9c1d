package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

const keyPrefix = "kyc:fields:"

// RedisCache stores extracted document fields in Redis with a TTL so that
// re-submitted documents skip OCR.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url, connects and pings. It returns nil when url is
// empty, meaning caching is disabled.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (dto.ExtractedFields, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var fields dto.ExtractedFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false, fmt.Errorf("decode cached fields: %w", err)
	}
	return dto.NewExtractedFields().Merge(fields), true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, fields dto.ExtractedFields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
