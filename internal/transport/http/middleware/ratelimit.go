package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"docintake/internal/transport/http/response"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per session, or per client IP before login.
type RateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	entries map[string]*limiterEntry
	now     func() time.Time

	nextSweep time.Time
	sweeps    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	if l.rps <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// sweep drops buckets idle longer than limiterIdleTTL. It runs at most once per
// limiterSweepInterval, whatever the number of keys.
func (l *RateLimiter) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.entries, k)
		}
	}
	l.sweeps++
	l.nextSweep = now.Add(limiterSweepInterval)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextSessionIDKey)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(key) {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
