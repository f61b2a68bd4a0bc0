package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the Redis client used by the auth middleware to cache
// user roles and permissions. Redis is optional: when REDIS_ADDR is unset
// or the server is unreachable, nil is returned and the middleware falls
// back to the database on every request.
func ConnectRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, auth caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		slog.Error("redis connection failed, auth caching disabled", "error", err)
		return nil
	}

	slog.Info("connected to redis", "addr", cfg.RedisAddr)
	return rdb
}
