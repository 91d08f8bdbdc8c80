package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func perform(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func TestRateLimitIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &stubLimiter{allowed: true}
	engine := gin.New()
	engine.GET("/thing", NewRateLimitMiddleware(limiter).RateLimitIP(10, time.Minute), okHandler)

	w := perform(engine, "/thing")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, limiter.keys[0], "rate_limit_ip:")
	assert.Contains(t, limiter.keys[0], "/thing")

	limiter.allowed = false
	w = perform(engine, "/thing")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitIPCheckFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &stubLimiter{err: errors.New("redis down")}
	engine := gin.New()
	engine.GET("/thing", NewRateLimitMiddleware(limiter).RateLimitIP(10, time.Minute), okHandler)

	w := perform(engine, "/thing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimitKeyedByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &stubLimiter{allowed: true}
	engine := gin.New()
	engine.GET("/thing",
		func(c *gin.Context) { c.Set(UserIDKey, "u1") },
		NewRateLimitMiddleware(limiter).RateLimit(10, time.Minute),
		okHandler)

	w := perform(engine, "/thing")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, limiter.keys[0], "rate_limit:u1:")

	limiter.allowed = false
	w = perform(engine, "/thing")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitRequiresAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &stubLimiter{allowed: true}
	engine := gin.New()
	engine.GET("/thing", NewRateLimitMiddleware(limiter).RateLimit(10, time.Minute), okHandler)

	w := perform(engine, "/thing")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, limiter.keys)
}
