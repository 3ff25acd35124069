package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport"
	"github.com/frahmantamala/practice-management/pkg/logger"
)

type RateChecker interface {
	CheckRateLimit(ctx context.Context, identifier, limitType string) (security.Result, error)
}

// KeyFunc picks the identifier a request is counted under.
type KeyFunc func(r *http.Request) string

// ClientIPKey counts requests per caller address.
func ClientIPKey(r *http.Request) string {
	if ip := internal.ClientFromContext(r.Context()).IP; ip != "" {
		return ip
	}
	return clientIP(r.RemoteAddr)
}

// UserOrIPKey counts authenticated requests per user and the rest per address.
func UserOrIPKey(r *http.Request) string {
	if id := internal.UserIDFromContext(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + ClientIPKey(r)
}

// RateLimit answers 429 once the limit type's policy is exhausted for the
// request's key. Store failures are logged and the request is let through.
func RateLimit(checker RateChecker, limitType string, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := checker.CheckRateLimit(r.Context(), key(r), limitType)
			if err != nil {
				logger.From(r.Context()).Error("rate limit check failed", "limit_type", limitType, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				transport.WriteAppError(w, internal.NewRateLimitedError("Too many requests, try again later"), "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
