// Package middleware holds chi adapters and in house middlewares
package middleware

import (
	"net/http"
	"time"

	"triagebot/internal/platform/logger"
	pnet "triagebot/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow logs requests at or above this duration at warn level; 0 disables
	Slow time.Duration
	// Log overrides the request scoped logger
	Log *logger.Logger
}

// AccessLogZerolog logs one line per request with the GitHub delivery headers.
// 5xx and slow requests log at warn level
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log := opt.Log
			if log == nil {
				log = logger.C(r.Context())
			}
			evt := log.Info()
			if status >= http.StatusInternalServerError || (opt.Slow > 0 && elapsed >= opt.Slow) {
				evt = log.Warn()
			}
			if ev := r.Header.Get("X-GitHub-Event"); ev != "" {
				evt = evt.Str("github_event", ev)
			}
			if id := r.Header.Get("X-GitHub-Delivery"); id != "" {
				evt = evt.Str("github_delivery", id)
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Str("request_id", pnet.RequestID(r.Context())).
				Msg("request done")
		})
	}
}
