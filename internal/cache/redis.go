package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/velren/railbook/config"
	"github.com/velren/railbook/internal/domain"
)

type RedisCache struct {
	client    *redis.Client
	trainsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, trainsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		trainsTTL: trainsTTL,
	}
}

func (c *RedisCache) GetTrains(ctx context.Context) ([]domain.Train, error) {
	data, err := c.client.Get(ctx, trainsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trains []domain.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

func (c *RedisCache) SetTrains(ctx context.Context, trains []domain.Train) error {
	payload, err := json.Marshal(trains)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trainsKey(), payload, c.trainsTTL).Err()
}

// InvalidateTrains drops the cached list after any seat-count or catalog
// mutation so clients never see a stale availability for a full TTL.
func (c *RedisCache) InvalidateTrains(ctx context.Context) error {
	return c.client.Del(ctx, trainsKey()).Err()
}

func trainsKey() string {
	return "cache:trains"
}
