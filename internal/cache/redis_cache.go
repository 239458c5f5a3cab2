package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tokokas/backend/internal/domain"
)

type RedisShiftDetailCache struct {
	client *redis.Client
}

func NewRedisShiftDetailCache(addr string, password string, db int) *RedisShiftDetailCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisShiftDetailCache{client: client}
}

func (c *RedisShiftDetailCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisShiftDetailCache) Close() error {
	return c.client.Close()
}

func (c *RedisShiftDetailCache) Get(ctx context.Context, key string) (*domain.ShiftDetailResponse, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp domain.ShiftDetailResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (c *RedisShiftDetailCache) Set(ctx context.Context, key string, value *domain.ShiftDetailResponse, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisShiftDetailCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
