package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests — максимальное количество запросов за Window
	MaxRequests int
	// Window — временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix — префикс для ключей в Redis
	KeyPrefix string
}

// AdminLoginRateLimitConfig — строгий лимит на вход в админку (защита от brute-force)
func AdminLoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 5,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:admin:login",
	}
}

// OrderRateLimitConfig ограничивает оформление заказов с одного адреса
func OrderRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 20,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:orders",
	}
}

// MediaRateLimitConfig ограничивает загрузку файлов и вызовы внешних AI-сервисов
func MediaRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 30,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:media",
	}
}

// RateLimiter создаёт middleware для rate limiting на основе Redis
type RateLimiter struct {
	redisClient redis.UniversalClient
	logger      *zap.Logger
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(redisClient redis.UniversalClient, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{redisClient: redisClient, logger: logger.Named("rate_limit")}
}

// Limit ограничивает запросы по IP + шаблону маршрута
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath() // шаблон маршрута, например "/api/admin/login"
		if path == "" {
			path = c.Request.URL.Path
		}
		rl.enforce(c, cfg, fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), path))
	}
}

// LimitByIP ограничивает количество запросов по IP на всю группу маршрутов
func (rl *RateLimiter) LimitByIP(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rl.enforce(c, cfg, fmt.Sprintf("%s:%s", cfg.KeyPrefix, c.ClientIP()))
	}
}

func (rl *RateLimiter) enforce(c *gin.Context, cfg RateLimitConfig, key string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	count, err := rl.redisClient.Incr(ctx, key).Result()
	if err != nil {
		// При ошибке Redis пропускаем запрос (fail-open)
		rl.logger.Warn("redis unavailable, allowing request", zap.String("key", key), zap.Error(err))
		c.Next()
		return
	}

	// Первый запрос в окне выставляет TTL
	if count == 1 {
		if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
			rl.logger.Warn("failed to set rate limit ttl", zap.String("key", key), zap.Error(err))
		}
	}

	remaining := cfg.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	ttl, _ := rl.redisClient.TTL(ctx, key).Result()
	retryAfter := int(ttl.Seconds())
	if retryAfter < 0 {
		retryAfter = int(cfg.Window.Seconds())
	}

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

	if int(count) > cfg.MaxRequests {
		rl.logger.Info("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", cfg.MaxRequests))

		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many requests. Please try again later.",
			"error_type":  "rate_limited",
			"retry_after": retryAfter,
		})
		return
	}

	c.Next()
}
