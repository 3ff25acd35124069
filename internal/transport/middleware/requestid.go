package middleware

import (
	"net"
	"net/http"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/pkg/logger"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID tags the context with a trace id and the caller's address. Run it
// after chi's RealIP so proxied requests carry the client address.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// inject into context
		ctx := logger.WithRequestID(r.Context(), traceID)
		ctx = internal.ContextWithClient(ctx, internal.ClientInfo{
			IP:        clientIP(r.RemoteAddr),
			UserAgent: r.UserAgent(),
		})

		// propagate back to response
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
