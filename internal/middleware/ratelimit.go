package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"eventhub/internal/cache"
	"eventhub/internal/config"
	"eventhub/internal/logger"

	"github.com/gin-gonic/gin"
)

// TokenTaker - хранилище token bucket (Valkey)
type TokenTaker interface {
	TakeToken(ctx context.Context, key string, cfg config.RateLimitConfig) (cache.Allowance, error)
}

// RateLimit ограничивает частоту запросов пользователя к маршруту.
// Без хранилища или при ошибке хранилища запрос пропускается.
func RateLimit(limiter TokenTaker, cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := rateKey(cfg.Prefix, c)

		allowance, err := limiter.TakeToken(c.Request.Context(), key, cfg)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("Rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(allowance.Remaining, 10))

		if !allowance.Allowed {
			secs := int(math.Ceil(allowance.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abortWith(c, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}

		c.Next()
	}
}

func rateKey(prefix string, c *gin.Context) string {
	subject := "ip:" + c.ClientIP()
	if identity, ok := IdentityFrom(c); ok {
		subject = "user:" + identity.UserID.String()
	}
	return strings.Join([]string{prefix, subject, c.Request.Method + " " + c.FullPath()}, ":")
}
