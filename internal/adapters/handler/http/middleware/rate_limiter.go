package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiterMiddleware is a fixed-window limiter shared across instances through redis.
// Redis failures let the request through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s", clientIP)

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn().Err(err).Msg("redis error, rate limiter skipped")
			c.Next()
			return
		}

		if count == 1 {
			if err := rdb.Expire(c.Request.Context(), key, window).Err(); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("redis expire error, deleting key to avoid zombie")
				rdb.Del(c.Request.Context(), key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(c.Request.Context(), key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		setLimitHeaders(c, limit, int64(limit)-count, time.Now().Add(ttl))

		if count > int64(limit) {
			tooManyRequests(c, ttl)
			return
		}

		c.Next()
	}
}

func setLimitHeaders(c *gin.Context, limit int, remaining int64, reset time.Time) {
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, remaining)))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
}

func tooManyRequests(c *gin.Context, retryIn time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":      "too many requests",
		"retry_in_s": int(retryIn.Seconds()),
	})
}
