package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"teahouse/internal/billing"

	"github.com/go-redis/redis/v8"
)

const rateTableKey = "teahouse:rates"

// RateCache 费率表缓存，写费率时删除
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRateCache(client *redis.Client, ttl time.Duration) *RateCache {
	return &RateCache{client: client, ttl: ttl}
}

// Get 未命中时返回 nil, nil
func (c *RateCache) Get(ctx context.Context) (*billing.RateTable, error) {
	data, err := c.client.Get(ctx, rateTableKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rates billing.RateTable
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}
	return &rates, nil
}

func (c *RateCache) Set(ctx context.Context, rates *billing.RateTable) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rateTableKey, data, c.ttl).Err()
}

func (c *RateCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rateTableKey).Err()
}
