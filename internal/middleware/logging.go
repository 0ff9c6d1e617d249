package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs each handled request once it is done. Tool webhook calls
// are logged at debug, everything else at trace.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{w, http.StatusOK}

			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"method":      r.Method,
				"route":       routeTemplate(r),
				"path":        r.URL.Path,
				"status":      resp.statusCode,
				"duration_ms": time.Since(begin).Milliseconds(),
				"ua":          r.Header.Get("User-Agent"),
			})
			if hasAnyPrefix(r.URL.Path, ToolPathPrefixes) {
				entry.Debug("tool request handled")
				return
			}
			entry.Trace("request handled")
		})
	}
}
