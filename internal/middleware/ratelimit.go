package middleware

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"konkan-properties/internal/response"
)

// RateLimitClient is the slice of the Redis API the limiter needs.
// *redis.Client satisfies it.
type RateLimitClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit throttles a route per client IP using a fixed Redis window.
// Applied to the credential endpoints only; it fails open if Redis is
// unreachable so auth never depends on Redis being up.
func RateLimit(rdb RateLimitClient, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "ratelimit:" + r.URL.Path + ":" + ip

			n, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("rate limit incr error: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				rdb.Expire(r.Context(), key, window)
			}
			if n > limit {
				response.Message(w, http.StatusTooManyRequests, "Too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
