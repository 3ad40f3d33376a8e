package log

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// AccessLog writes one line per request. Request headers are never logged,
// so bearer tokens stay out of the logs.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []Field{
			String("method", r.Method),
			String("path", r.URL.Path),
			Int("status", status),
			Int("bytes", ww.BytesWritten()),
			Duration("duration", time.Since(start)),
		}
		if status >= http.StatusInternalServerError {
			Warn(r.Context(), "request", fields...)
			return
		}
		Info(r.Context(), "request", fields...)
	})
}
