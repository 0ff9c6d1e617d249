package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows each caller allowedPerMin requests per minute on the routes
// of group. Callers are told how long to back off via Retry-After.
func RateLimit(
	rateLimiter RequestRateLimiter,
	group string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	limit := redis_rate.PerMinute(allowedPerMin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(group, r)
			res, err := rateLimiter.Allow(r.Context(), key, limit)
			if err != nil {
				log.WithField("key", key).Errorf("rate limiter: %s", err)
				http.Error(w, "rate limit internal error", http.StatusInternalServerError)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			log.WithFields(log.Fields{
				"key":         key,
				"retry_after": retryAfter,
			}).Warn("request rate limited")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "too many requests, retry after "+strconv.Itoa(retryAfter)+"s", http.StatusTooManyRequests)
		})
	}
}

// rateLimitKey buckets requests per group and caller IP; callers whose IP
// cannot be read share one bucket per group.
func rateLimitKey(group string, r *http.Request) string {
	ip, err := pkg.ReadUserIP(r)
	if err != nil || ip == "" {
		ip = "unknown"
	}
	return "rate:" + group + ":" + ip
}
