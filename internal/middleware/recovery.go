package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/2beens/weeklyreps/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery keeps a panicking handler from taking the server down and replies
// with 500, unless the handler already started writing the response.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			resp := &responseWriter{ResponseWriter: respWriter}
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("http: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					if !resp.wroteHeader {
						http.Error(resp, "internal server error", http.StatusInternalServerError)
					}
				}
			}()

			// handler call
			next.ServeHTTP(resp, req)
		})
	}
}
