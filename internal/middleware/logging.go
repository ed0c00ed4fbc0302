// middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	reqctx "infinite-experiment/briefing/internal/context"
	"infinite-experiment/briefing/internal/logging"
)

// Logging logs one line per completed request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lw, r)

		logging.Info("HTTP request completed",
			"request_id", reqctx.GetRequestID(r.Context()),
			"method", r.Method,
			"endpoint", routePattern(r),
			"status_code", lw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}
