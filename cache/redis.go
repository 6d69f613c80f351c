package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitFromEnv initializes Redis using either REDIS_URL or a local fallback.
// The cache is optional: when the connection fails the server keeps running
// and every Get/Set becomes a no-op.
func InitFromEnv() error {
	redisURL := os.Getenv("REDIS_URL")

	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		Client = redis.NewClient(opt)
	} else {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		Client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			Username: os.Getenv("REDIS_USERNAME"),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		Client = nil
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func Get(ctx context.Context, key string) (string, error) {
	if Client == nil {
		return "", redis.Nil
	}
	return Client.Get(ctx, key).Result()
}

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if Client == nil {
		return nil
	}
	return Client.Set(ctx, key, value, ttl).Err()
}

// DeletePattern drops every key matching the given glob, e.g. "posts:page:*".
func DeletePattern(ctx context.Context, pattern string) error {
	if Client == nil {
		return nil
	}
	iter := Client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := Client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
