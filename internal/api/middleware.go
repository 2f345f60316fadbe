package api

import (
	"net/http"
	"time"

	"github.com/mmrzaf/datalchemy/internal/logging"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one request.completed record per request, at warn
// for 4xx and error for 5xx.
func LoggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": time.Since(started).Milliseconds(),
			"remote":      r.RemoteAddr,
		}
		switch {
		case sw.status >= 500:
			logger.Errorw("request.completed", fields)
		case sw.status >= 400:
			logger.Warnw("request.completed", fields)
		default:
			logger.Infow("request.completed", fields)
		}
	})
}
