package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tictactoe_server/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimiter is a fixed-window request limit per client IP kept in Redis.
type RateLimiter struct {
	rdb    counter
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(rdb counter, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: int64(limit), window: window, now: time.Now}
}

// Handler lets every request through when Redis is not configured or fails.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rdb == nil || l.limit <= 0 {
			c.Next()
			return
		}

		slot := l.now().UnixNano() / int64(l.window)
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), slot)
		ctx := c.Request.Context()

		count, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.WithContext(ctx).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			l.rdb.Expire(ctx, key, l.window)
		}

		remaining := l.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > l.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
