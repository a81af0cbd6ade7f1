package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"structura-api/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rateLimitLog = config.NewLogger("[ratelimit] ")

// RateLimitMiddleware applies a fixed-window limit per client IP and route backed by Redis.
// A nil client or disabled config makes it a no-op; Redis errors let the request through.
func RateLimitMiddleware(cfg config.RateLimitConfig, rdb redis.Cmdable) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		now := time.Now()
		window := now.UnixNano() / int64(cfg.Window)
		key := rateKey(cfg.Prefix, c.ClientIP(), c.FullPath(), window)

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			rateLimitLog.Printf("redis error for key=%s: %v", key, err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				rateLimitLog.Printf("expire failed for key=%s: %v", key, err)
			}
		}

		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Limit) {
			windowEnd := time.Unix(0, (window+1)*int64(cfg.Window))
			retry := int(math.Ceil(windowEnd.Sub(now).Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "Too many attempts, please try again later",
				"retry_after": retry,
			})
			return
		}

		c.Next()
	}
}

func rateKey(prefix, ip, route string, window int64) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{prefix, "ip", ip, "route", route, strconv.FormatInt(window, 10)}, ":")
}
