/**
 * @description
 * Distributed fixed-window rate limiting for the payment endpoints, backed by
 * Redis. Order creation and verification hit the gateway and the store, so a
 * misbehaving client gets cut off before it can hammer either.
 */
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RateLimiter implements per-user fixed-window limiting using Redis.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window per user.
func NewRateLimiter(client redis.UniversalClient, prefix string, limit int64, window time.Duration) *RateLimiter {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = "entitlement:rate_limit"
	}
	return &RateLimiter{
		client: client,
		prefix: strings.TrimSuffix(trimmed, ":"),
		limit:  limit,
		window: window,
	}
}

// Middleware enforces the limit for authenticated requests, keyed by user id.
// A nil limiter (Redis not configured) passes everything through, and a Redis
// outage fails open: payments must not be blocked by the limiter's own store.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("%s:%s", l.prefix, userID)
		res, err := fixedWindowScript.Run(r.Context(), l.client, []string{key}, l.window.Milliseconds()).Slice()
		if err != nil || len(res) < 1 {
			next.ServeHTTP(w, r)
			return
		}

		count, _ := res[0].(int64)
		if count > l.limit {
			respondWithError(w, http.StatusTooManyRequests, "Too many payment requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
