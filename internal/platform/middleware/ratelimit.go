package middleware

import (
	"sync"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow reports whether key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = entry
		r.sweep(now)
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// sweep drops idle buckets; called with mu held.
func (r *RateLimiter) sweep(now time.Time) {
	for k, e := range r.limiters {
		if now.Sub(e.lastSeen) > r.idleTTL {
			delete(r.limiters, k)
		}
	}
}

// RateLimitMiddleware limits by authenticated user, falling back to client IP.
func RateLimitMiddleware(limiter *RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = userID.String()
		}
		if !limiter.Allow(key) {
			log.Warn("rate limit exceeded", zap.String("key", key))
			response.TooManyRequests(c, "rate limit exceeded, try again later")
			return
		}
		c.Next()
	}
}
