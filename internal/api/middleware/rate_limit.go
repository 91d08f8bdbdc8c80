package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter is the sliding-window counter behind the rate limit middleware.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type RateLimitMiddleware struct {
	limiter Limiter
}

func NewRateLimitMiddleware(limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// RateLimit throttles authenticated routes per user and endpoint. It must
// run after RequireAuth so the user id is already in the context.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(UserIDKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", userID, c.Request.URL.Path)
		allowed, err := rm.limiter.Allow(c.Request.Context(), key, requests, window)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitIP throttles public routes by client address. Used on the auth
// endpoints and the websocket handshake, which run before any token check.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		allowed, err := rm.limiter.Allow(c.Request.Context(), key, requests, window)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
