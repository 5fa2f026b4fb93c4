package redis

import (
	"context"
	"fmt"
	"time"

	"aiVisibility/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens the connection backing the sweep locks. The pool
// is sized off the sweep fan-out so concurrent lock acquisitions never
// queue behind each other, with a small floor for ad-hoc commands.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	poolSize := cfg.Pipeline.SweepConcurrency * 2
	if poolSize < 10 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.RedisHost, cfg.Redis.RedisPort),
		Password:     cfg.Redis.RedisPassword,
		Username:     "default",
		DB:           cfg.Redis.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}

	return nil
}
