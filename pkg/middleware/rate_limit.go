package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	// Visitors unseen for this long are forgotten
	TTL time.Duration
}

type rateLimiter struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	visitors *ttlcache.Cache
}

func (r *rateLimiter) limiter(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Get extends the TTL of a visitor that keeps coming back
	if v, err := r.visitors.Get(ip); err == nil {
		return v.(*rate.Limiter)
	}

	l := rate.NewLimiter(rate.Limit(r.cfg.RequestsPerSecond), r.cfg.Burst)
	r.visitors.Set(ip, l)

	return l
}

func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	if config.Burst < config.RequestsPerSecond {
		config.Burst = config.RequestsPerSecond
	}

	visitors := ttlcache.NewCache()
	visitors.SetTTL(config.TTL)

	r := &rateLimiter{
		cfg:      config,
		visitors: visitors,
	}

	return func(c *gin.Context) {
		if !r.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":   false,
				"message":   "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
