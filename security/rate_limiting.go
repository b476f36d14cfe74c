package security

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"course-dashboard/monitoring"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

const rateWindow = time.Minute

type RateLimiter struct {
	redis   *redis.Client
	monitor *monitoring.Monitor
	limit   int64

	// identify returns the client key of a request.
	identify func(e *core.RequestEvent) string
}

// NewRateLimiter allows perMinute requests per client on the dashboard
// routes. perMinute <= 0 disables the limit.
func NewRateLimiter(redisClient *redis.Client, monitor *monitoring.Monitor, perMinute int) *RateLimiter {
	return &RateLimiter{
		redis:   redisClient,
		monitor: monitor,
		limit:   int64(perMinute),
		identify: func(e *core.RequestEvent) string {
			return e.RealIP()
		},
	}
}

// DashboardRateLimit counts requests per client in a fixed one-minute window.
// Redis errors let the request through.
func (r *RateLimiter) DashboardRateLimit(e *core.RequestEvent) error {
	if r.limit <= 0 {
		return e.Next()
	}

	ctx := e.Request.Context()
	key := fmt.Sprintf("ratelimit:dashboard:%s", r.identify(e))

	// INCR and EXPIRE NX run in one MULTI so a key never outlives its window
	// and a later request cannot extend it.
	var incr *redis.IntCmd
	if _, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rateWindow)
		return nil
	}); err != nil {
		slog.Warn("rate limit: redis", "key", key, "error", err)
		return e.Next()
	}
	count := incr.Val()

	if count > r.limit {
		r.monitor.TrackRateLimited()
		e.Response.Header().Set("Retry-After", fmt.Sprintf("%d", int(rateWindow.Seconds())))
		return e.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "Rate limit exceeded. Please try again later.",
		})
	}

	return e.Next()
}

// AntiBot rejects requests from well-known crawler user agents.
func (r *RateLimiter) AntiBot(e *core.RequestEvent) error {
	if isSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
		return e.JSON(http.StatusForbidden, map[string]string{
			"error": "Access denied",
		})
	}
	return e.Next()
}

func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
