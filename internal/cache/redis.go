package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the Store interface with a Redis server so cached listings
// survive restarts and are shared across instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and pings once. Returns nil when the server is
// unreachable; callers fall back to the in-memory cache.
func NewRedis(addr string, defaultTTL time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis at %s: %v. Falling back to in-memory cache.", addr, err)
		return nil
	}

	log.Println("✅ Redis connected:", addr)
	return &Redis{client: client, ttl: defaultTTL}
}

func (c *Redis) Marshal(key string, value interface{}, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	return c.client.Set(context.Background(), key, data, duration).Err()
}

func (c *Redis) Unmarshal(key string, target interface{}) (bool, error) {
	data, err := c.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		// A flaky cache is not worth failing the request over.
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Redis) Delete(key string) {
	c.client.Del(context.Background(), key)
}

func (c *Redis) DeleteByPrefix(prefix string) {
	ctx := context.Background()
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
