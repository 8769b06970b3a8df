package middleware

import (
	"net/http"
	"time"

	"github.com/eugeneokaka/journal/internal/metrics"
)

// Instrument records one metrics observation per request, labelled with the
// matched route pattern so path parameters do not explode cardinality.
// Unmatched requests are grouped under "unmatched".
func Instrument(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			if route == "/metrics" {
				return
			}

			recorder.ObserveHTTPRequest(r.Method, route, wrapped.status, time.Since(start))
		})
	}
}
