package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/pkg/logger"
	"go.uber.org/zap"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter limits requests per key in a fixed time window shared through Redis.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a Redis-backed fixed window limiter
func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*RateLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "marketplace:ratelimit"
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window, now: time.Now}, nil
}

// Allow reports whether key is within quota. Redis failures deny the request.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}

// Middleware limits requests per route and client IP
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Path() + ":" + c.RealIP()
			allowed, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				logger.FromEcho(c).Error("Rate limiter unavailable", zap.Error(err))
			}
			if !allowed {
				logger.FromEcho(c).Warn("Rate limit exceeded", zap.String("key", key))
				return response.Error(c, http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
