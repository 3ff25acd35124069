package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/security"
	"github.com/frahmantamala/practice-management/internal/transport"
)

const maxSanitizeBytes = 1 << 20

// SanitizeJSON rewrites JSON object bodies of write requests through the
// security sanitizer. Values under sensitive keys pass unchanged.
func SanitizeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasJSONBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxSanitizeBytes+1))
		if err != nil {
			transport.WriteAppError(w, internal.NewValidationError("failed to read request body", internal.ErrCodeValidationFailed), "")
			return
		}
		if len(raw) > maxSanitizeBytes {
			transport.WriteAppError(w, internal.NewValidationError("request body too large", internal.ErrCodeValidationFailed), "")
			return
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var data map[string]any
		if err := dec.Decode(&data); err != nil || data == nil {
			// not an object: leave it to the handler's decoder
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}

		cleaned, err := json.Marshal(security.SanitizeMap(data, IsSensitiveField))
		if err != nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(cleaned))
		r.ContentLength = int64(len(cleaned))
		next.ServeHTTP(w, r)
	})
}

func hasJSONBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
