package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"infinite-experiment/briefing/internal/api"
	"infinite-experiment/briefing/internal/constants"
	reqctx "infinite-experiment/briefing/internal/context"
	"infinite-experiment/briefing/internal/logging"
)

// RecoverMiddleware turns a handler panic into the 500 error envelope. The
// panic value is only included in development mode.
func RecoverMiddleware(devMode bool) func(http.Handler) http.Handler {
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

				logging.Error("Recovered from handler panic",
					"request_id", reqctx.GetRequestID(r.Context()),
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)

				var details any
				if devMode {
					details = fmt.Sprintf("panic: %v", rec)
				}
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrCodeInternal,
					constants.GetErrorMessage(constants.ErrCodeInternal), details)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
