package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const ToolSecretHeader = "x-tool-secret"

// ToolSecretCheck requires the shared tool secret on paths under any of the protected
// prefixes. An empty secret disables the check, for local development.
func ToolSecretCheck(secret string, protectedPrefixes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Method == http.MethodOptions || !hasAnyPrefix(r.URL.Path, protectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.tool-secret")
			provided := r.Header.Get(ToolSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[tool secret] unauthorized => %s from %s", r.URL.Path, reqIp)
				span.SetStatus(codes.Error, "invalid-tool-secret")
				span.End()
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			span.SetStatus(codes.Ok, "ok")
			span.End()

			next.ServeHTTP(w, r)
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
