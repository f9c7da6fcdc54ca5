package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a per-user fixed-window limiter shared across instances through Redis.
type RateLimiter struct {
	incr   func(ctx context.Context, key string) (int64, error)
	limit  int64
	prefix string
	logger *zap.Logger
}

func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string, logger *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	ms := window.Milliseconds()
	return newRateLimiter(func(ctx context.Context, key string) (int64, error) {
		res, err := fixedWindowScript.Run(ctx, rdb, []string{key}, ms).Result()
		if err != nil {
			return 0, err
		}
		switch v := res.(type) {
		case int64:
			return v, nil
		case string:
			return strconv.ParseInt(v, 10, 64)
		}
		return 0, fmt.Errorf("unexpected rate limit script result %T", res)
	}, limit, prefix, logger)
}

func newRateLimiter(incr func(context.Context, string) (int64, error), limit int, prefix string, logger *zap.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{incr: incr, limit: int64(limit), prefix: prefix, logger: logger}
}

// Handler counts requests per authenticated user. Redis failures let the
// request through.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := rl.prefix + ":" + actorID(c).String()
		count, err := rl.incr(c.UserContext(), key)
		if err != nil {
			rl.logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		if count > rl.limit {
			return c.Status(fiber.StatusTooManyRequests).JSON(Response{
				Message: "too many requests, try again later",
				Reason:  apperr.ReasonRateLimited,
			})
		}
		return c.Next()
	}
}
