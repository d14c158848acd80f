package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per caller in fixed Redis windows. Without a
// Redis client, or while Redis is failing, it falls back to an in-process
// token bucket per caller with the same average rate.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
	now       func() time.Time
}

// localBucket is a caller's fallback token bucket. A bucket idle for a full
// window has refilled completely, so dropping it loses no state.
type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// maxLocalCallers forces an idle sweep before the next window elapses
const maxLocalCallers = 10000

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		local:  make(map[string]*localBucket),
		now:    time.Now,
	}
}

// NewRecipeCreationRateLimiter limits recipe creation to 30 per hour
func NewRecipeCreationRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     30,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// NewToggleRateLimiter limits favorite, cart and subscription toggles to 120
// per minute
func NewToggleRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     120,
		KeyPrefix: "rate_limit:toggle",
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting.
// Authenticated callers are keyed by user id, anonymous ones by client IP.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := "ip:" + c.ClientIP()
		if id, ok := CurrentUserID(c); ok {
			caller = "user:" + id.String()
		}

		backend := "redis"
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), caller)
		if err != nil {
			logging.Warn().Err(err).Str("limiter", rl.config.KeyPrefix).Msg("redis rate limit check failed, using local limiter")
			backend = "local"
			allowed, remaining, resetTime = rl.allowLocal(caller)
		} else if rl.redis == nil {
			backend = "local"
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(rl.config.KeyPrefix, backend).Inc()
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window),
				"code":        "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed checks if a request from the given caller is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, caller string) (bool, int, time.Time, error) {
	if rl.redis == nil {
		allowed, remaining, reset := rl.allowLocal(caller)
		return allowed, remaining, reset, nil
	}

	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, caller, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	return count <= rl.config.Limit, remaining, resetTime, nil
}

func (rl *RateLimiter) allowLocal(caller string) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) >= rl.config.Window || len(rl.local) >= maxLocalCallers {
		rl.sweepLocked(now)
	}
	bucket, ok := rl.local[caller]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[caller] = bucket
	}
	bucket.lastSeen = now
	rl.mu.Unlock()

	allowed := bucket.limiter.AllowN(now, 1)
	remaining := int(bucket.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	reset := now.Add(rl.config.Window / time.Duration(rl.config.Limit))
	return allowed, remaining, reset
}

// sweepLocked drops buckets idle for at least one window. rl.mu must be held.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for caller, bucket := range rl.local {
		if now.Sub(bucket.lastSeen) >= rl.config.Window {
			delete(rl.local, caller)
		}
	}
	rl.lastSweep = now
}
