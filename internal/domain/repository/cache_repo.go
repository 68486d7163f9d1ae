package repository

import (
	"context"
	"time"
)

// CacheRepository хранит сериализованные в JSON значения с ограниченным временем жизни.
// Отсутствие ключа возвращается как apperrors.ErrNotFound.
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr атомарно увеличивает счётчик и возвращает новое значение
	Incr(ctx context.Context, key string) (int64, error)
}
