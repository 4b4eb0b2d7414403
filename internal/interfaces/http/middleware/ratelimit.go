package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/redis"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis INCR/EXPIRE.
// Windows are keyed by IP and window index, so counters expire on their own
// and no sweeping is needed. On Redis failure the limiter fails open; losing
// throttling is better than losing the API.
type RateLimiter struct {
	cache   redis.Cache
	logger  logging.Logger
	metrics *prometheus.Metrics
	limit   int64
	window  time.Duration
}

// NewRateLimiter builds a limiter from the rate-limit config section.
func NewRateLimiter(cache redis.Cache, cfg config.RateLimitConfig, metrics *prometheus.Metrics, logger logging.Logger) *RateLimiter {
	return &RateLimiter{
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		limit:   int64(cfg.Requests),
		window:  cfg.Window,
	}
}

// Handler enforces the limit on every request passing through.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		windowIdx := time.Now().Unix() / int64(rl.window.Seconds())
		key := redis.CacheKey("ratelimit", ip, fmt.Sprintf("%d", windowIdx))

		count, err := rl.cache.Incr(r.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, failing open", logging.Err(err))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := rl.cache.Expire(r.Context(), key, rl.window); err != nil {
				rl.logger.Warn("rate limit window expire failed", logging.Err(err))
			}
		}

		if count > rl.limit {
			rl.metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"code":%q,"message":"rate limit exceeded"}`, errors.ErrCodeTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port; chi's RealIP middleware has already resolved
// forwarding headers upstream of this.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
