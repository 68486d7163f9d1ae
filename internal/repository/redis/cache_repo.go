package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

// CacheRepo хранит JSON-снимки в Redis под общим префиксом
type CacheRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewCacheRepo создаёт кеш; prefix добавляется ко всем ключам
func NewCacheRepo(client redis.UniversalClient, prefix string) (*CacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for CacheRepo")
	}
	return &CacheRepo{client: client, prefix: prefix}, nil
}

func (r *CacheRepo) key(key string) string {
	return r.prefix + key
}

// GetJSON читает значение и разбирает его в dest
func (r *CacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// битый снимок считаем промахом, он будет перезаписан
		_ = r.client.Del(ctx, r.key(key)).Err()
		return apperrors.ErrNotFound
	}
	return nil
}

// SetJSON сериализует value и сохраняет его на ttl
func (r *CacheRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// Delete удаляет ключи; отсутствующие ключи не считаются ошибкой
func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

// Incr атомарно увеличивает счётчик; отсутствующий ключ считается нулём
func (r *CacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr %s: %w", key, err)
	}
	return n, nil
}
