package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/pumpcatalog-backend/internal/errors"
	"golang.org/x/time/rate"
)

const (
	visitorCleanupInterval = time.Minute
	visitorIdleTTL         = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows r events per second with bursts of b per client.
// Idle visitors are dropped until ctx is cancelled.
func NewRateLimiter(ctx context.Context, r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}
	go rl.cleanupVisitors(ctx)
	return rl
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"ip": c.ClientIP(),
			})
			apperrors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
