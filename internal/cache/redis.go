// Package cache предоставляет key/value хранилище для пользовательских
// сессий. Основная реализация — redis, резервная — в памяти процесса.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/auto-assistant-client/internal/config"
)

// Redis обертка над клиентом redis, реализующая интерфейс session.KV.
type Redis struct {
	Db *redis.Client
}

// InitServer подключается к redis по настройкам из конфига и проверяет связь.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db}, nil
}

// Get возвращает значение по ключу и признак его наличия.
func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set сохраняет значение по ключу с временем жизни.
func (c *Redis) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.Db.Set(ctx, key, value, expiration).Err()
}

// Del удаляет значения по ключам.
func (c *Redis) Del(ctx context.Context, keys ...string) error {
	return c.Db.Del(ctx, keys...).Err()
}
