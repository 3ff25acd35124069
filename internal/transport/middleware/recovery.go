package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/errorlog"
	"github.com/frahmantamala/practice-management/internal/transport"
)

// ErrorHandler turns a panic into a critical error record and a 500 carrying
// the record id. With debugMode set the panic is re-raised after logging.
func ErrorHandler(errs *errorlog.Service, debugMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				id := errs.LogError(r.Context(), err,
					errorlog.WithSeverity(errorlog.SeverityCritical),
					errorlog.WithRequest(r),
					errorlog.WithStack(debug.Stack()))

				if debugMode {
					panic(rec)
				}

				transport.WriteAppError(w, &internal.AppError{
					Type:       internal.ErrorTypeInternal,
					Code:       internal.ErrCodeInternal,
					Message:    errorlog.MsgGeneric,
					StatusCode: http.StatusInternalServerError,
				}, id)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
