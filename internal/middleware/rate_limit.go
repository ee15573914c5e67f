package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/evyataryagoni/visitortrack/internal/identity"
	"github.com/evyataryagoni/visitortrack/internal/limiter"
)

// RateLimitMiddleware enforces rate limiting per client address
// (returns 429 when exceeded). The address is resolved with the same
// header priority the tracking pipeline uses, so the limiter and the
// visitor identity always agree about who the client is.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := identity.ClientAddr(r.Header)
			if addr == identity.FallbackAddr && r.RemoteAddr != "" {
				// No identity headers: fall back to the socket peer so
				// direct (unproxied) clients are still limited individually
				addr = r.RemoteAddr
			}

			if !lim.Allow(addr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
