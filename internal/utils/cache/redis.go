package cache

import (
	"context"
	"encoding/json"
	"time"

	"CookShare-Backend/internal/utils"

	"github.com/redis/go-redis/v9"
)

// Client is a thin JSON cache over redis. When REDIS_ADDR is not
// configured every lookup is a miss and writes are dropped, so callers
// never have to special-case a disabled cache.
type Client struct {
	rdb *redis.Client
}

func NewClient() *Client {
	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		return &Client{}
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: utils.GetConfig("REDIS_PASSWORD"),
		}),
	}
}

func (c *Client) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil || val == "" {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, jsonBytes, ttl).Err()
}
