package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/reelinsight/internal/api/response"
	"github.com/kiranshivaraju/reelinsight/internal/cache"
)

const window = 60 * time.Second

// RateLimit is a fixed-window limiter keyed by API key prefix, or by client
// address for unauthenticated requests.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
}

// NewRateLimit creates a new RateLimit middleware. A non-positive
// requestsPerMin disables limiting.
func NewRateLimit(c cache.Cache, requestsPerMin int) *RateLimit {
	return &RateLimit{cache: c, requestsPerMin: requestsPerMin}
}

// Enabled reports whether requests are counted at all.
func (rl *RateLimit) Enabled() bool {
	return rl != nil && rl.requestsPerMin > 0
}

func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	if !rl.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := rl.cache.IncrWithExpiry(r.Context(), cache.RateLimitKey(clientKey(r)), window)
		if err != nil {
			// Fail open when the counter store is down.
			slog.WarnContext(r.Context(), "rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.requestsPerMin - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

		if count > int64(rl.requestsPerMin) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey falls back to RemoteAddr, which is the TCP peer unless the router
// was told to trust proxy headers.
func clientKey(r *http.Request) string {
	if prefix, ok := GetKeyPrefix(r); ok {
		return "key:" + prefix
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
