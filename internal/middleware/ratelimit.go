package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
)

// RateLimiter counts hits for a key within a fixed window.
type RateLimiter interface {
	// Allow records a hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

type clientInfo struct {
	start time.Time
	count int
}

// MemoryRateLimiter is a fixed-window limiter local to the process.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientInfo
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewMemoryRateLimiter allows maxRequests per key per window.
func NewMemoryRateLimiter(maxRequests int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		clients:     make(map[string]*clientInfo),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow implements RateLimiter.
func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) >= l.window {
		l.clients[key] = &clientInfo{start: now, count: 1}
		l.sweep(now)
		return true, nil
	}

	ci.count++
	return ci.count <= l.maxRequests, nil
}

// sweep drops expired windows so the map does not grow without bound.
func (l *MemoryRateLimiter) sweep(now time.Time) {
	for key, ci := range l.clients {
		if now.Sub(ci.start) >= l.window {
			delete(l.clients, key)
		}
	}
}

// RedisRateLimiter is a fixed-window limiter shared between processes using
// INCR/EXPIRE. Keys have the form rl:<window_seconds>:<key>.
type RedisRateLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// NewRedisRateLimiter allows maxRequests per key per window.
func NewRedisRateLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow implements RateLimiter.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + key

	val, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if val == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, err
		}
	}

	return val <= int64(l.maxRequests), nil
}

// RateLimit rejects clients that exceed the limiter with 429. Limiter errors
// let the request through.
func RateLimit(limiter RateLimiter, message string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()

		allowed, err := limiter.Allow(c.Request.Context(), endpoint+"|"+c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("rate limiter unavailable")
			c.Header("X-RateLimit-Error", "limiter-error")
			c.Next()
			return
		}

		if !allowed {
			RLBlocked.WithLabelValues(endpoint).Inc()
			apierrors.TooManyRequests(c, message)
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
