package cache

import (
	"context"
	"fmt"
	"time"

	"opengalaxy/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap/zapcore"
)

type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisCache(addr, password string, db int, log *logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{client: client, logger: log}
}

// Ping checks the connection so callers can fall back to a local cache.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := r.client.Set(ctx, key, value, expiration).Err()
	if err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Failed to set cache key", map[string]any{"key": key, "expiration": expiration.String()}, "CACHE", err)
		return fmt.Errorf("failed to set key %s in cache: %w", key, err)
	}
	r.logger.Log(zapcore.DebugLevel, "", "Cache key set", map[string]any{"key": key, "expiration": expiration.String()}, "CACHE", nil)
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		r.logger.Log(zapcore.DebugLevel, "", "Cache miss", map[string]any{"key": key}, "CACHE", nil)
		return nil, nil
	}
	if err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Failed to get cache key", map[string]any{"key": key}, "CACHE", err)
		return nil, fmt.Errorf("failed to get key %s from cache: %w", key, err)
	}
	r.logger.Log(zapcore.DebugLevel, "", "Cache hit", map[string]any{"key": key}, "CACHE", nil)
	return val, nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.client.Del(ctx, keys...).Err()
	if err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Failed to delete cache keys", map[string]any{"keys": keys}, "CACHE", err)
		return fmt.Errorf("failed to delete keys %v from cache: %w", keys, err)
	}
	return nil
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Log(zapcore.ErrorLevel, "", "Failed to check cache key", map[string]any{"key": key}, "CACHE", err)
		return false, fmt.Errorf("failed to check existence of key %s in cache: %w", key, err)
	}
	return result > 0, nil
}
