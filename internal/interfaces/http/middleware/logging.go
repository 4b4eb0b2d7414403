// Package middleware holds the HTTP middleware: request logging, CORS, and
// the Redis-backed rate limiter.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
)

// slowRequestThreshold marks requests worth a warning on latency alone.
const slowRequestThreshold = 3 * time.Second

// skipLogPaths are high-frequency probe paths kept out of the request log.
var skipLogPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// wrappedResponseWriter captures the status code and bytes written.
type wrappedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *wrappedResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *wrappedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// RequestLogging logs every finished request and records it in the metrics
// registry. 5xx responses log at error level, 4xx and slow requests at warn.
func RequestLogging(logger logging.Logger, metrics *prometheus.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipLogPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ww := &wrappedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			metrics.HTTPActiveRequests.Inc()
			next.ServeHTTP(ww, r)
			metrics.HTTPActiveRequests.Dec()

			elapsed := time.Since(start)

			// The route pattern keeps metric cardinality bounded; raw paths
			// with embedded IDs would explode the label space.
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			metrics.ObserveRequest(r.Method, pattern, strconv.Itoa(ww.statusCode), elapsed)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", ww.statusCode),
				logging.Duration("duration", elapsed),
				logging.Int64("bytes", ww.bytesWritten),
				logging.String("remote_addr", r.RemoteAddr),
				logging.String("request_id", chimw.GetReqID(r.Context())),
			}

			switch {
			case ww.statusCode >= http.StatusInternalServerError:
				logger.Error("request failed", fields...)
			case ww.statusCode >= http.StatusBadRequest || elapsed > slowRequestThreshold:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}
