package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the per-account token bucket settings.
type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	IdleTTL         time.Duration // limiters unused this long are dropped
	CleanupInterval time.Duration
}

// RateLimiter keeps one token bucket per account (or client IP before auth).
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	limiters *cache.Cache
	logger   *zap.Logger
}

// NewRateLimiter creates a RateLimiter. Idle limiters expire from the cache.
func NewRateLimiter(cfg RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.Burst,
		idleTTL:  cfg.IdleTTL,
		limiters: cache.New(cfg.IdleTTL, cfg.CleanupInterval),
		logger:   logger.Named("rate_limiter"),
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
// Place it after the auth middleware to key by account.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := common.GetAccountIDFromContext(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !rl.limiterFor(key).Allow() {
			retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			rl.logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		// Refresh expiry on access.
		rl.limiters.Set(key, lim, rl.idleTTL)
		return lim
	}
	lim := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Set(key, lim, rl.idleTTL)
	return lim
}

// Len returns the number of tracked limiters.
func (rl *RateLimiter) Len() int {
	return rl.limiters.ItemCount()
}
