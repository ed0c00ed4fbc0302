package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"infinite-experiment/briefing/internal/api"
	"infinite-experiment/briefing/internal/config"
	"infinite-experiment/briefing/internal/constants"
)

// limiterIdleTTL is how long a client's bucket is kept after its last request.
const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay idle for limiterIdleTTL are dropped.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	rps      rate.Limit
	burst    int

	whitelistedIPs map[string]bool
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return newRateLimiter(cfg, limiterIdleTTL, time.Minute)
}

func newRateLimiter(cfg config.RateLimitConfig, idleTTL, cleanupInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: gocache.New(idleTTL, cleanupInterval),
		rps:      rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
		whitelistedIPs: map[string]bool{
			"127.0.0.1": true, // local BFF
			"::1":       true,
		},
	}
}

func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, found := l.limiters.Get(ip); found {
		limiter := v.(*rate.Limiter)
		// refresh the idle deadline
		l.limiters.SetDefault(ip, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters.SetDefault(ip, limiter)
	return limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if l.whitelistedIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			api.RespondWithError(w, http.StatusTooManyRequests, constants.ErrCodeRateLimited,
				constants.GetErrorMessage(constants.ErrCodeRateLimited), nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
