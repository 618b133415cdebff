package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/pumpcatalog-backend/config"
	"github.com/ikkim/pumpcatalog-backend/pkg/logger"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache is a small JSON cache over a Redis client.
type Cache struct {
	client *redis.Client
	prefix string
}

// New connects and pings Redis.
func New(cfg *config.RedisConfig) (*Cache, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, prefix: "pumpcatalog:"}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// GetJSON decodes the cached value into dest. A miss returns false, nil.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to read cache entry", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		logger.Error("Failed to write cache entry", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

// DeletePrefix removes every key starting with prefix. Uses SCAN so it
// does not block the server on large keyspaces.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}

	logger.Debug("Cache entries invalidated", map[string]interface{}{
		"prefix": prefix,
		"count":  len(keys),
	})
	return len(keys), nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	return c.client.Close()
}
