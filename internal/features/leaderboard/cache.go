// Package leaderboard: cache.go хранит топ недели в Redis.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "ecobot:leaderboard:"

// CacheKey: ключ топа для недели, начинающейся weekStart.
func CacheKey(weekStart time.Time) string {
	return keyPrefix + weekStart.Format("2006-01-02")
}

// RedisCache: снимок топа недели в виде JSON.
type RedisCache struct {
	client *goredis.Client
}

// NewRedisCache создаёт кэш рейтинга.
func NewRedisCache(client *goredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get возвращает снимок. false: ключа нет (или он истёк).
func (c *RedisCache) Get(ctx context.Context, key string) ([]Row, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения кэша рейтинга: %w", err)
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("повреждён кэш рейтинга %s: %w", key, err)
	}
	return rows, true, nil
}

// Del удаляет снимок. Отсутствие ключа ошибкой не считается.
func (c *RedisCache) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ошибка сброса кэша рейтинга: %w", err)
	}
	return nil
}

// Set сохраняет снимок на ttl.
func (c *RedisCache) Set(ctx context.Context, key string, rows []Row, ttl time.Duration) error {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("ошибка сериализации рейтинга: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи кэша рейтинга: %w", err)
	}
	return nil
}
